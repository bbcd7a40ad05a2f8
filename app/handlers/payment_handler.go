package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// PaymentHandler serves payment uploads, listings and admin approval
type PaymentHandler struct {
	baseHandler
	paymentFlow businessflow.PaymentFlow
}

func NewPaymentHandler(paymentFlow businessflow.PaymentFlow) *PaymentHandler {
	return &PaymentHandler{baseHandler: newBaseHandler(), paymentFlow: paymentFlow}
}

// ListDebtorPayments returns the payments of one debtor
// @Summary Debtor payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.PaymentDTO} "Payments"
// @Router /api/v1/debtors/{id}/payments [get]
func (h *PaymentHandler) ListDebtorPayments(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/payments")
	defer cancel()

	result, err := h.paymentFlow.ListDebtorPayments(ctx, userID, debtorID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list payments")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Payments retrieved successfully", result)
}

// UploadPayment records a payment with its proof of payment
// @Summary Upload payment
// @Description Multipart upload. The payment stays unverified until an admin approves it.
// @Tags Payments
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Param amount formData string true "Amount"
// @Param payment_date formData string true "Payment date (YYYY-MM-DD)"
// @Param file formData file true "Proof of payment (jpg, jpeg, png, webp or pdf)"
// @Success 201 {object} dto.APIResponse{data=dto.UploadPaymentResponse} "Awaiting admin approval"
// @Failure 400 {object} dto.APIResponse "Invalid amount, date or file"
// @Router /api/v1/debtors/{id}/payments [post]
func (h *PaymentHandler) UploadPayment(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	req := dto.UploadPaymentRequest{
		Amount:      c.FormValue("amount"),
		PaymentDate: c.FormValue("payment_date"),
	}
	if ok, err := h.validate(c, &req); !ok {
		return err
	}

	if fileHeader, ferr := c.FormFile("file"); ferr == nil {
		content, err := readFormFile(fileHeader)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read file", "FILE_READ_FAILED", err.Error())
		}
		req.FileName = fileHeader.Filename
		req.FileSize = fileHeader.Size
		req.Content = content
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/payments")
	defer cancel()

	result, err := h.paymentFlow.UploadPayment(ctx, userID, debtorID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to upload payment")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result)
}

// ListPayments is the scoped payment report
// @Summary List payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param debtor_id query int false "Debtor"
// @Param agent_id query int false "Agent"
// @Param status query string false "verified or pending"
// @Param period query string false "week, month, this_week or this_month"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListPaymentsResponse} "Payments"
// @Router /api/v1/payments [get]
func (h *PaymentHandler) ListPayments(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ListPaymentsRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/payments")
	defer cancel()

	result, err := h.paymentFlow.ListPayments(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list payments")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Payments retrieved successfully", result)
}

// UpdatePayment corrects a payment
// @Summary Update payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param request body dto.UpdatePaymentRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentDTO} "Payment updated"
// @Router /api/v1/payments/{id} [put]
func (h *PaymentHandler) UpdatePayment(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	paymentID, err := h.pathID(c, "id")
	if paymentID == 0 {
		return err
	}
	var req dto.UpdatePaymentRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/payments/:id")
	defer cancel()

	result, err := h.paymentFlow.UpdatePayment(ctx, userID, paymentID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to update payment")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Payment updated successfully", result)
}

// VerifyPayment approves a pending payment
// @Summary Verify payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentDTO} "Payment verified"
// @Router /api/v1/payments/{id}/verify [post]
func (h *PaymentHandler) VerifyPayment(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	paymentID, err := h.pathID(c, "id")
	if paymentID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/payments/:id/verify")
	defer cancel()

	result, err := h.paymentFlow.VerifyPayment(ctx, userID, paymentID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to verify payment")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Payment verified successfully", result)
}

// DeletePayment removes a payment
// @Summary Delete payment
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} dto.APIResponse "Payment deleted"
// @Router /api/v1/payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	paymentID, err := h.pathID(c, "id")
	if paymentID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/payments/:id")
	defer cancel()

	if err := h.paymentFlow.DeletePayment(ctx, userID, paymentID); err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to delete payment")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Payment deleted successfully", nil)
}
