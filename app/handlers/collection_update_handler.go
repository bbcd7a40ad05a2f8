package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// CollectionUpdateHandler serves collection notes and the debtor event log
type CollectionUpdateHandler struct {
	baseHandler
	updateFlow businessflow.CollectionUpdateFlow
	eventFlow  businessflow.EventLogFlow
}

func NewCollectionUpdateHandler(updateFlow businessflow.CollectionUpdateFlow, eventFlow businessflow.EventLogFlow) *CollectionUpdateHandler {
	return &CollectionUpdateHandler{baseHandler: newBaseHandler(), updateFlow: updateFlow, eventFlow: eventFlow}
}

// ListDebtorUpdates returns a debtor's collection notes
// @Summary Debtor collection updates
// @Tags Collection updates
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CollectionUpdateDTO} "Collection updates"
// @Router /api/v1/debtors/{id}/collection-updates [get]
func (h *CollectionUpdateHandler) ListDebtorUpdates(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/collection-updates")
	defer cancel()

	result, err := h.updateFlow.ListDebtorUpdates(ctx, userID, debtorID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list collection updates")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Collection updates retrieved successfully", result)
}

// CreateUpdate adds a collection note to a debtor
// @Summary Create collection update
// @Tags Collection updates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Param request body dto.CreateCollectionUpdateRequest true "Note"
// @Success 201 {object} dto.APIResponse{data=dto.CollectionUpdateDTO} "Collection update created"
// @Router /api/v1/debtors/{id}/collection-updates [post]
func (h *CollectionUpdateHandler) CreateUpdate(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}
	var req dto.CreateCollectionUpdateRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/collection-updates")
	defer cancel()

	result, err := h.updateFlow.CreateUpdate(ctx, userID, debtorID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to create collection update")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Collection update created successfully", result)
}

// ListUpdates is the scoped collection update report
// @Summary List collection updates
// @Tags Collection updates
// @Produce json
// @Security BearerAuth
// @Param debtor_id query int false "Debtor"
// @Param agent_id query int false "Agent"
// @Param period query string false "week, month, this_week or this_month"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListCollectionUpdatesResponse} "Collection updates"
// @Router /api/v1/collection-updates [get]
func (h *CollectionUpdateHandler) ListUpdates(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ListCollectionUpdatesRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/collection-updates")
	defer cancel()

	result, err := h.updateFlow.ListUpdates(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list collection updates")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Collection updates retrieved successfully", result)
}

// CreateEvent appends an action to a debtor's event log
// @Summary Log debtor event
// @Tags Event log
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Param request body dto.CreateEventLogRequest true "Event"
// @Success 201 {object} dto.APIResponse{data=dto.EventLogDTO} "Event recorded"
// @Router /api/v1/debtors/{id}/events [post]
func (h *CollectionUpdateHandler) CreateEvent(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}
	var req dto.CreateEventLogRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/events")
	defer cancel()

	result, err := h.eventFlow.CreateEvent(ctx, userID, debtorID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to record event")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Event recorded", result)
}

// ListDebtorEvents returns a debtor's event log, newest first
// @Summary Debtor event log
// @Tags Event log
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.EventLogDTO} "Events"
// @Router /api/v1/debtors/{id}/events [get]
func (h *CollectionUpdateHandler) ListDebtorEvents(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id/events")
	defer cancel()

	result, err := h.eventFlow.ListDebtorEvents(ctx, userID, debtorID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list events")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Events retrieved successfully", result)
}
