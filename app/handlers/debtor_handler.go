package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// DebtorHandler serves debtor CRUD, bulk actions and imports
type DebtorHandler struct {
	baseHandler
	debtorFlow businessflow.DebtorFlow
}

func NewDebtorHandler(debtorFlow businessflow.DebtorFlow) *DebtorHandler {
	return &DebtorHandler{baseHandler: newBaseHandler(), debtorFlow: debtorFlow}
}

// ListDebtors lists the debtors visible to the caller
// @Summary List debtors
// @Tags Debtors
// @Produce json
// @Security BearerAuth
// @Param agent_id query int false "Assigned agent"
// @Param deal_stage query string false "Deal stage code"
// @Param client query string false "Client name"
// @Param overdue query bool false "Next follow-up before today"
// @Param search query string false "Name, phone or account number"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.ListDebtorsResponse} "Debtors"
// @Router /api/v1/debtors [get]
func (h *DebtorHandler) ListDebtors(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ListDebtorsRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors")
	defer cancel()

	result, err := h.debtorFlow.ListDebtors(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to list debtors")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Debtors retrieved successfully", result)
}

// GetDebtor returns one debtor with its financial summary
// @Summary Get debtor
// @Tags Debtors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Success 200 {object} dto.APIResponse{data=dto.DebtorDetailResponse} "Debtor"
// @Failure 404 {object} dto.APIResponse "Debtor not found"
// @Router /api/v1/debtors/{id} [get]
func (h *DebtorHandler) GetDebtor(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id")
	defer cancel()

	result, err := h.debtorFlow.GetDebtor(ctx, userID, debtorID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to load debtor")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Debtor retrieved successfully", result)
}

// CreateDebtor adds a debtor
// @Summary Create debtor
// @Tags Debtors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateDebtorRequest true "Debtor"
// @Success 201 {object} dto.APIResponse{data=dto.DebtorDTO} "Debtor created"
// @Router /api/v1/debtors [post]
func (h *DebtorHandler) CreateDebtor(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.CreateDebtorRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors")
	defer cancel()

	result, err := h.debtorFlow.CreateDebtor(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to create debtor")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Debtor created successfully", result)
}

// UpdateDebtor edits a debtor
// @Summary Update debtor
// @Tags Debtors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Param request body dto.UpdateDebtorRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.DebtorDTO} "Debtor updated"
// @Router /api/v1/debtors/{id} [put]
func (h *DebtorHandler) UpdateDebtor(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}
	var req dto.UpdateDebtorRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id")
	defer cancel()

	result, err := h.debtorFlow.UpdateDebtor(ctx, userID, debtorID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to update debtor")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Debtor updated successfully", result)
}

// DeleteDebtor removes a debtor and its dependent records
// @Summary Delete debtor
// @Tags Debtors
// @Produce json
// @Security BearerAuth
// @Param id path int true "Debtor ID"
// @Success 200 {object} dto.APIResponse "Debtor deleted"
// @Router /api/v1/debtors/{id} [delete]
func (h *DebtorHandler) DeleteDebtor(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	debtorID, err := h.pathID(c, "id")
	if debtorID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/:id")
	defer cancel()

	if err := h.debtorFlow.DeleteDebtor(ctx, userID, debtorID); err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to delete debtor")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Debtor deleted successfully", nil)
}

// BulkDelete removes several debtors at once
// @Summary Bulk delete debtors
// @Tags Debtors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkDeleteDebtorsRequest true "Debtor IDs"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Debtors deleted"
// @Router /api/v1/debtors/bulk-delete [post]
func (h *DebtorHandler) BulkDelete(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.BulkDeleteDebtorsRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/bulk-delete")
	defer cancel()

	result, err := h.debtorFlow.BulkDelete(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to delete debtors")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Debtors deleted successfully", result)
}

// BulkReassign moves several debtors to another agent
// @Summary Bulk reassign debtors
// @Tags Debtors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkReassignDebtorsRequest true "Debtor IDs and target agent"
// @Success 200 {object} dto.APIResponse{data=dto.BulkResult} "Debtors reassigned"
// @Router /api/v1/debtors/bulk-reassign [post]
func (h *DebtorHandler) BulkReassign(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.BulkReassignDebtorsRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/bulk-reassign")
	defer cancel()

	result, err := h.debtorFlow.BulkReassign(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to reassign debtors")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Debtors reassigned successfully", result)
}

// ImportDebtors loads debtors from an uploaded CSV or XLSX file
// @Summary Import debtors
// @Tags Debtors
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} dto.APIResponse{data=dto.ImportDebtorsResponse} "Import summary"
// @Failure 400 {object} dto.APIResponse "Invalid file"
// @Router /api/v1/debtors/import [post]
func (h *DebtorHandler) ImportDebtors(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "file is required", "FILE_REQUIRED", nil)
	}
	content, err := readFormFile(fileHeader)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Failed to read file", "FILE_READ_FAILED", err.Error())
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/debtors/import")
	defer cancel()

	result, err := h.debtorFlow.ImportDebtors(ctx, userID, &dto.ImportDebtorsRequest{FileName: fileHeader.Filename, Content: content})
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to import debtors")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Import completed", result)
}

// DealStages lists the deal stage vocabulary
// @Summary Deal stages
// @Tags Debtors
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.DealStageDTO} "Deal stages"
// @Router /api/v1/deal-stages [get]
func (h *DebtorHandler) DealStages(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/deal-stages")
	defer cancel()
	return h.SuccessResponse(c, fiber.StatusOK, "Deal stages", h.debtorFlow.DealStages(ctx))
}
