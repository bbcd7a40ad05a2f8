package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// PTPHandler serves promises to pay
type PTPHandler struct {
	baseHandler
	ptpFlow businessflow.PTPFlow
}

func NewPTPHandler(ptpFlow businessflow.PTPFlow) *PTPHandler {
	return &PTPHandler{baseHandler: newBaseHandler(), ptpFlow: ptpFlow}
}

// ListDebtorPTPs returns a debtor's promises to pay
// @Summary Debtor PTPs
// @Tags PTPs
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.PTPDTO} "PTPs"
// @Router /api/v1/debtors/{id}/ptps [get]
func (h *PTPHandler) ListDebtorPTPs(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/ptps")
	defer cancel()

	result, err := h.ptpFlow.ListDebtorPTPs(ctx, userID, debtorID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list PTPs")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "PTPs retrieved successfully", result)
}

// CreatePTP records a promise to pay
// @Summary Create PTP
// @Tags PTPs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Param request body dto.CreatePTPRequest true "Promise"
// @Success 201 {object} dto.APIResponse{data=dto.PTPDTO} "PTP created"
// @Router /api/v1/debtors/{id}/ptps [post]
func (h *PTPHandler) CreatePTP(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}
	var req dto.CreatePTPRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/ptps")
	defer cancel()

	result, err := h.ptpFlow.CreatePTP(ctx, userID, debtorID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to create PTP")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "PTP created successfully", result)
}

// UpdatePTP changes a promise's status or paid amount
// @Summary Update PTP
// @Tags PTPs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "PTP ID"
// @Param request body dto.UpdatePTPRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.PTPDTO} "PTP updated"
// @Router /api/v1/ptps/{id} [put]
func (h *PTPHandler) UpdatePTP(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	ptpID, err := h.pathID(c, "id")
	if ptpID == 0 {
		return err
	}
	var req dto.UpdatePTPRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/ptps/:id")
	defer cancel()

	result, err := h.ptpFlow.UpdatePTP(ctx, userID, ptpID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to update PTP")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "PTP updated successfully", result)
}

// DeletePTP removes a promise to pay
// @Summary Delete PTP
// @Tags PTPs
// @Produce json
// @Security BearerAuth
// @Param id path int true "PTP ID"
// @Success 200 {object} dto.APIResponse "PTP deleted"
// @Router /api/v1/ptps/{id} [delete]
func (h *PTPHandler) DeletePTP(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	ptpID, err := h.pathID(c, "id")
	if ptpID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/ptps/:id")
	defer cancel()

	if err := h.ptpFlow.DeletePTP(ctx, userID, ptpID); err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to delete PTP")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "PTP deleted successfully", nil)
}

// ListPTPs is the scoped PTP report
// @Summary List PTPs
// @Tags PTPs
// @Produce json
// @Security BearerAuth
// @Param debtor_id query int false "Debtor"
// @Param agent_id query int false "Agent"
// @Param status query string false "pending, partially_honored or fully_honored"
// @Param period query string false "week, month, this_week or this_month"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListPTPsResponse} "PTPs"
// @Router /api/v1/ptps [get]
func (h *PTPHandler) ListPTPs(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ListPTPsRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/ptps")
	defer cancel()

	result, err := h.ptpFlow.ListPTPs(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list PTPs")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "PTPs retrieved successfully", result)
}
