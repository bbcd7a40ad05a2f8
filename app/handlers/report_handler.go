package handlers

import (
	"github.com/amirphl/debt-collection-crm/app/dto"
	businessflow "github.com/amirphl/debt-collection-crm/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ReportHandler serves the dashboard and analytics reports
type ReportHandler struct {
	baseHandler
	reportFlow businessflow.ReportFlow
}

func NewReportHandler(reportFlow businessflow.ReportFlow) *ReportHandler {
	return &ReportHandler{baseHandler: newBaseHandler(), reportFlow: reportFlow}
}

// Dashboard returns the caller's portfolio summary
// @Summary Dashboard
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard"
// @Router /api/v1/dashboard [get]
func (h *ReportHandler) Dashboard(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/dashboard")
	defer cancel()

	result, err := h.reportFlow.Dashboard(ctx, userID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to load dashboard")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved successfully", result)
}

// MonthlyReport returns payments per month over the last year
// @Summary Monthly report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MonthlyReportResponse} "Monthly totals"
// @Router /api/v1/reports/monthly [get]
func (h *ReportHandler) MonthlyReport(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/reports/monthly")
	defer cancel()

	result, err := h.reportFlow.MonthlyReport(ctx, userID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to build monthly report")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Monthly report", result)
}

// PerformanceReport aggregates agent performance since a date
// @Summary Performance report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param since query string false "Start date (YYYY-MM-DD), defaults to 30 days ago"
// @Success 200 {object} dto.APIResponse{data=dto.PerformanceReportResponse} "Performance"
// @Router /api/v1/reports/performance [get]
func (h *ReportHandler) PerformanceReport(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.PerformanceReportRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/reports/performance")
	defer cancel()

	result, err := h.reportFlow.PerformanceReport(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to build performance report")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Performance report", result)
}

// PTPReport summarizes promises to pay
// @Summary PTP report
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PTPReportResponse} "PTP summary"
// @Router /api/v1/reports/ptp [get]
func (h *ReportHandler) PTPReport(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/reports/ptp")
	defer cancel()

	result, err := h.reportFlow.PTPReport(ctx, userID)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to build PTP report")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "PTP report", result)
}

// AgentActivities counts work per agent
// @Summary Agent activities
// @Tags Reports
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month, this_week or this_month"
// @Success 200 {object} dto.APIResponse{data=dto.AgentActivitiesResponse} "Activities"
// @Router /api/v1/reports/agent-activities [get]
func (h *ReportHandler) AgentActivities(c fiber.Ctx) error {
	userID, err := h.currentUser(c)
	if userID == 0 {
		return err
	}
	var req dto.AgentActivitiesRequest
	if ok, err := h.bindQuery(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/reports/agent-activities")
	defer cancel()

	result, err := h.reportFlow.AgentActivities(ctx, userID, &req)
	if err != nil {
		return h.handleFlowError(c, ctx, err, "Failed to build agent activities")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Agent activities", result)
}
