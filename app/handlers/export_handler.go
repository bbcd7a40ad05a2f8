package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ExportHandler streams CSV and XLSX exports
type ExportHandler struct {
	baseHandler
	exportFlow businessflow.ExportFlow
}

func NewExportHandler(exportFlow businessflow.ExportFlow) *ExportHandler {
	return &ExportHandler{baseHandler: newBaseHandler(), exportFlow: exportFlow}
}

func (h *ExportHandler) sendFile(c fiber.Ctx, file *dto.ExportFile) error {
	c.Set("Content-Type", file.ContentType)
	c.Set("Content-Disposition", "attachment; filename="+file.FileName)
	return c.Status(fiber.StatusOK).Send(file.Content)
}

// ExportDebtors downloads the visible debtors
// @Summary Export debtors
// @Tags Exports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv (default) or xlsx"
// @Success 200 {file} file "Debtor export"
// @Failure 400 {object} dto.APIResponse "Unsupported format"
// @Router /api/v1/exports/debtors [get]
func (h *ExportHandler) ExportDebtors(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ExportRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/exports/debtors")
	defer cancel()

	file, err := h.exportFlow.ExportDebtors(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to export debtors")
	}
	return h.sendFile(c, file)
}

// ExportPayments downloads the visible payments
// @Summary Export payments
// @Tags Exports
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param format query string false "csv (default) or xlsx"
// @Param approved query bool false "Only verified payments"
// @Success 200 {file} file "Payment export"
// @Router /api/v1/exports/payments [get]
func (h *ExportHandler) ExportPayments(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ExportRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/exports/payments")
	defer cancel()

	file, err := h.exportFlow.ExportPayments(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to export payments")
	}
	return h.sendFile(c, file)
}

// RecordExportLog stores an export performed by a client application
// @Summary Record export log
// @Tags Exports
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.ExportLogRequest true "Export log"
// @Success 201 {object} dto.APIResponse{data=dto.ExportLogResponse} "Export logged"
// @Failure 400 {object} dto.APIResponse "Missing required fields"
// @Router /api/v1/export-logs [post]
func (h *ExportHandler) RecordExportLog(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.ExportLogRequest
	if ok, err := h.bindJSON(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/export-logs")
	defer cancel()

	result, err := h.exportFlow.RecordExportLog(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to record export log")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Export logged", result)
}
