package handler

import (
	"net/http"

	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Production godoc
// @Summary Production dashboard
// @Description Job counters over the jobs of the user's assignments.
// @Description
// @Description - `topCards`: in progress, active, completed, and active jobs nobody holds
// @Description - `weeklyPerformance`: completed and created since Monday, open jobs without an update for three days
// @Description - `employeeWorkload`: open jobs in the user's assignments
// @Tags Dashboard
// @Produce json
// @Param productionId path int true "Production user ID"
// @Success 200 {object} domain.DataResponse{data=domain.WorkerDashboard}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /dashboards/production/{productionId} [get]
func (h *DashboardHandler) Production(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "productionId")
	if !ok {
		return
	}
	dashboard, err := h.dashboardService.Production(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "load production dashboard", zap.Int64("production_id", id))
		return
	}
	respondData(w, dashboard)
}

// Employee godoc
// @Summary Employee dashboard
// @Description Same counters as the production dashboard; the workload counts every job ever handed to the employee.
// @Tags Dashboard
// @Produce json
// @Param employeeId path int true "Employee user ID"
// @Success 200 {object} domain.DataResponse{data=domain.WorkerDashboard}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /dashboards/employee/{employeeId} [get]
func (h *DashboardHandler) Employee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "employeeId")
	if !ok {
		return
	}
	dashboard, err := h.dashboardService.Employee(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "load employee dashboard", zap.Int64("employee_id", id))
		return
	}
	respondData(w, dashboard)
}

// AdminReport godoc
// @Summary Admin reports
// @Description Totals, currency-wise invoice and PO sums, job analytics for the current week, paid and unpaid amounts, booked hours
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DataResponse{data=domain.AdminReport}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admin/reports [get]
func (h *DashboardHandler) AdminReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.dashboardService.AdminReport(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "load admin reports")
		return
	}
	respondData(w, report)
}
