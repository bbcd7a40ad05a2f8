package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CallLogHandler serves the telephony webhook and the call history
type CallLogHandler struct {
	baseHandler
	callLogFlow businessflow.CallLogFlow
}

func NewCallLogHandler(callLogFlow businessflow.CallLogFlow) *CallLogHandler {
	return &CallLogHandler{baseHandler: newBaseHandler(), callLogFlow: callLogFlow}
}

// WebRTCWebhook upserts a call record from a softphone provider callback
// @Summary WebRTC call webhook
// @Description Public callback. Repeated deliveries for the same CallSid update one record.
// @Tags Call logs
// @Produce json
// @Param CallSid query string true "Provider call ID"
// @Param StartTime query string true "Call start time"
// @Param EndTime query string false "Call end time"
// @Param SourceNumber query string false "Agent number"
// @Param DialWhomNumber query string false "Receiver number"
// @Param receiver_name query string false "Agent name"
// @Param Status query string false "Call status"
// @Param CallDuration query int false "Duration in seconds"
// @Success 200 {object} dto.WebRTCWebhookResponse "Call recorded"
// @Failure 400 {object} dto.APIResponse "Missing CallSid or StartTime"
// @Router /api/v1/webhooks/webrtc [get]
func (h *CallLogHandler) WebRTCWebhook(c fiber.Ctx) error {
	var req dto.WebRTCWebhookRequest
	if err := c.Bind().Query(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid query parameters", "INVALID_QUERY", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/webhooks/webrtc")
	defer cancel()

	result, err := h.callLogFlow.HandleWebhook(ctx, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to record call")
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// ListCallLogs returns recent calls, newest first
// @Summary List call logs
// @Tags Call logs
// @Produce json
// @Security BearerAuth
// @Param agent_number query string false "Agent number (admins only)"
// @Param debtor_id query int false "Debtor"
// @Param status query string false "Call status"
// @Param limit query int false "Maximum rows"
// @Success 200 {object} dto.APIResponse{data=[]dto.CallLogDTO} "Call logs"
// @Router /api/v1/call-logs [get]
func (h *CallLogHandler) ListCallLogs(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ListCallLogsRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/call-logs")
	defer cancel()

	result, err := h.callLogFlow.ListCallLogs(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list call logs")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Call logs retrieved successfully", result)
}
