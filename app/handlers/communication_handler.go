package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CommunicationHandler serves outbound SMS, email, WhatsApp and softphone actions
type CommunicationHandler struct {
	baseHandler
	commsFlow businessflow.CommunicationFlow
}

func NewCommunicationHandler(commsFlow businessflow.CommunicationFlow) *CommunicationHandler {
	return &CommunicationHandler{baseHandler: newBaseHandler(), commsFlow: commsFlow}
}

// SendSMS sends a text message through the SMS gateway
// @Summary Send SMS
// @Tags Communication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendSMSRequest true "Message"
// @Success 200 {object} dto.APIResponse{data=dto.SendResult} "Message sent"
// @Failure 400 {object} dto.APIResponse "Missing recipient or message"
// @Failure 502 {object} dto.APIResponse "Gateway error"
// @Router /api/v1/communication/sms [post]
func (h *CommunicationHandler) SendSMS(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.SendSMSRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/communication/sms")
	defer cancel()

	result, err := h.commsFlow.SendSMS(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to send SMS")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "SMS sent successfully", result)
}

// SendEmail sends a letterhead email
// @Summary Send email
// @Tags Communication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendEmailRequest true "Email"
// @Success 200 {object} dto.APIResponse{data=dto.SendResult} "Email sent"
// @Failure 400 {object} dto.APIResponse "Missing required fields"
// @Router /api/v1/communication/email [post]
func (h *CommunicationHandler) SendEmail(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.SendEmailRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/communication/email")
	defer cancel()

	result, err := h.commsFlow.SendEmail(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to send email")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Email sent successfully", result)
}

// WhatsAppLink builds a wa.me deep link
// @Summary WhatsApp link
// @Tags Communication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.WhatsAppLinkRequest true "Phone and message"
// @Success 200 {object} dto.APIResponse{data=dto.LinkResponse} "Link"
// @Router /api/v1/communication/whatsapp [post]
func (h *CommunicationHandler) WhatsAppLink(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.WhatsAppLinkRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/communication/whatsapp")
	defer cancel()

	result, err := h.commsFlow.WhatsAppLink(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to build WhatsApp link")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "WhatsApp link generated", result)
}

// SoftphoneLink builds the softphone popup URL for a number
// @Summary Softphone link
// @Tags Communication
// @Produce json
// @Security BearerAuth
// @Param number query string true "Number to dial"
// @Param debtor_id query int false "Debtor"
// @Success 200 {object} dto.APIResponse{data=dto.LinkResponse} "Link"
// @Router /api/v1/communication/softphone [get]
func (h *CommunicationHandler) SoftphoneLink(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.SoftphoneRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/communication/softphone")
	defer cancel()

	result, err := h.commsFlow.SoftphoneLink(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to build softphone link")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Softphone link generated", result)
}

// Templates lists the message templates per channel
// @Summary Message templates
// @Tags Communication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.TemplatesResponse} "Templates"
// @Router /api/v1/communication/templates [get]
func (h *CommunicationHandler) Templates(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/communication/templates")
	defer cancel()

	result, err := h.commsFlow.Templates(ctx, userID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list templates")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Templates retrieved successfully", result)
}

// RenderTemplate fills a template's placeholders from a debtor
// @Summary Render template
// @Tags Communication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.RenderTemplateRequest true "Template and debtor"
// @Success 200 {object} dto.APIResponse{data=dto.RenderTemplateResponse} "Rendered text"
// @Router /api/v1/communication/templates/render [post]
func (h *CommunicationHandler) RenderTemplate(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.RenderTemplateRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/communication/templates/render")
	defer cancel()

	result, err := h.commsFlow.RenderTemplate(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to render template")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Template rendered", result)
}
