package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// FollowUpHandler serves follow-up history and creation
type FollowUpHandler struct {
	baseHandler
	followUpFlow businessflow.FollowUpFlow
}

func NewFollowUpHandler(followUpFlow businessflow.FollowUpFlow) *FollowUpHandler {
	return &FollowUpHandler{baseHandler: newBaseHandler(), followUpFlow: followUpFlow}
}

// ListDebtorFollowUps returns a debtor's follow-ups, newest first
// @Summary Debtor follow-ups
// @Tags Follow-ups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.FollowUpDTO} "Follow-ups"
// @Router /api/v1/debtors/{id}/follow-ups [get]
func (h *FollowUpHandler) ListDebtorFollowUps(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/follow-ups")
	defer cancel()

	result, err := h.followUpFlow.ListDebtorFollowUps(ctx, userID, debtorID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list follow-ups")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Follow-ups retrieved successfully", result)
}

// CreateFollowUp records a follow-up and moves the debtor's deal stage
// @Summary Create follow-up
// @Tags Follow-ups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Param request body dto.CreateFollowUpRequest true "Follow-up"
// @Success 201 {object} dto.APIResponse{data=dto.FollowUpDTO} "Follow-up created"
// @Failure 400 {object} dto.APIResponse "Invalid stage or date"
// @Failure 403 {object} dto.APIResponse "Debtor not assigned to caller"
// @Router /api/v1/debtors/{id}/follow-ups [post]
func (h *FollowUpHandler) CreateFollowUp(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}
	var req dto.CreateFollowUpRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/follow-ups")
	defer cancel()

	result, err := h.followUpFlow.CreateFollowUp(ctx, userID, debtorID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to create follow-up")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Follow-up created successfully", result)
}

// ListFollowUps is the scoped follow-up report
// @Summary List follow-ups
// @Tags Follow-ups
// @Produce json
// @Security BearerAuth
// @Param debtor_id query int false "Debtor"
// @Param agent_id query int false "Agent"
// @Param deal_stage query string false "Deal stage"
// @Param period query string false "week, month, this_week or this_month"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListFollowUpsResponse} "Follow-ups"
// @Router /api/v1/follow-ups [get]
func (h *FollowUpHandler) ListFollowUps(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ListFollowUpsRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/follow-ups")
	defer cancel()

	result, err := h.followUpFlow.ListFollowUps(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list follow-ups")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Follow-ups retrieved successfully", result)
}
