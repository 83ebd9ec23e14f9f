package handlers

import (
	businessflow "github.com/amirphl/repair-desk/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ReportHandler serves the dashboard, workload and report views and the state controls
type ReportHandler struct {
	baseHandler
	flow businessflow.ReportFlow
}

func NewReportHandler(flow businessflow.ReportFlow) *ReportHandler {
	return &ReportHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// Dashboard
// @Description Headline stats and the five most recently updated tickets
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.DashboardResponse} "Dashboard retrieved successfully"
// @Failure 503 {object} dto.APIResponse "Repair data not loaded"
// @Router /api/v1/dashboard [get]
func (h *ReportHandler) Dashboard(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/dashboard")
	defer cancel()

	result, err := h.flow.Dashboard(ctx)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to build dashboard", "DASHBOARD_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Dashboard retrieved successfully", result)
}

// Workload
// @Tags Reports
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.WorkloadOverview} "Workload retrieved successfully"
// @Router /api/v1/workload [get]
func (h *ReportHandler) Workload(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/workload")
	defer cancel()

	result, err := h.flow.Workload(ctx)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to build workload", "WORKLOAD_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Workload retrieved successfully", result)
}

// Report
// @Description Aggregates over the tickets created in the trailing window
// @Tags Reports
// @Produce json
// @Param days query int false "Window in days, default 30"
// @Success 200 {object} dto.APIResponse{data=dto.Report} "Report retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Invalid window"
// @Router /api/v1/reports [get]
func (h *ReportHandler) Report(c fiber.Ctx) error {
	days, err := parseDays(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_DAYS", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/reports")
	defer cancel()

	result, err := h.flow.Report(ctx, days)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to build report", "REPORT_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Report retrieved successfully", result)
}

// Export Report
// @Description Download the report as repair-report-YYYY-MM-DD.json or .xlsx
// @Tags Reports
// @Produce json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param days query int false "Window in days, default 30"
// @Param format query string false "json (default) or xlsx"
// @Success 200 {file} file "Report file"
// @Failure 400 {object} dto.APIResponse "Invalid window or format"
// @Router /api/v1/reports/export [get]
func (h *ReportHandler) Export(c fiber.Ctx) error {
	days, err := parseDays(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "INVALID_DAYS", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/reports/export")
	defer cancel()

	export, err := h.flow.Export(ctx, days, c.Query("format"))
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to export report", "REPORT_EXPORT_FAILED")
	}

	c.Attachment(export.FileName)
	c.Set(fiber.HeaderContentType, export.ContentType)
	return c.Status(fiber.StatusOK).Send(export.Content)
}

// State
// @Description Loading flag, load error and collection sizes of the session state
// @Tags State
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StateStatus} "State retrieved successfully"
// @Router /api/v1/state [get]
func (h *ReportHandler) State(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/state")
	defer cancel()

	return h.SuccessResponse(c, fiber.StatusOK, "State retrieved successfully", h.flow.Status(ctx))
}

// Reload State
// @Description Re-fetch tickets, customers and technicians from the data store
// @Tags State
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.StateStatus} "State reloaded successfully"
// @Failure 503 {object} dto.APIResponse "Load failed"
// @Router /api/v1/state/reload [post]
func (h *ReportHandler) Reload(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/state/reload")
	defer cancel()

	status, err := h.flow.Reload(ctx)
	if err != nil {
		return h.FlowErrorResponse(c, err, "Failed to reload state", "STATE_RELOAD_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "State reloaded successfully", status)
}
