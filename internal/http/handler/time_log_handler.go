package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type TimeLogHandler struct {
	timeLogService *service.TimeLogService
	logger         *zap.Logger
}

func NewTimeLogHandler(timeLogService *service.TimeLogService, logger *zap.Logger) *TimeLogHandler {
	return &TimeLogHandler{
		timeLogService: timeLogService,
		logger:         logger,
	}
}

// Create godoc
// @Summary Create time log
// @Description Books time on a job. The current assignment's task description and time budget are saved with the log.
// @Tags Time Logs
// @Accept json
// @Produce json
// @Param request body domain.TimeLogRequest true "Time log"
// @Success 201 {object} domain.DataResponse{data=domain.TimeLog}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-logs [post]
func (h *TimeLogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.TimeLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	log, err := h.timeLogService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create time log", zap.Int64("job_id", req.JobID))
		return
	}
	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Time log created (task snapshot saved)",
		"data":    log,
	})
}

// List godoc
// @Summary List time logs
// @Tags Time Logs
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.TimeLogView}
// @Security BearerAuth
// @Router /time-logs [get]
func (h *TimeLogHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.timeLogService.List(r.Context())
	h.respondLogs(w, logs, err, "list time logs")
}

// ListAllEmployee godoc
// @Summary List time logs booked by employees
// @Tags Time Logs
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.TimeLogView}
// @Security BearerAuth
// @Router /time-logs/onlyemployeeall/all [get]
func (h *TimeLogHandler) ListAllEmployee(w http.ResponseWriter, r *http.Request) {
	logs, err := h.timeLogService.ListAllEmployee(r.Context())
	h.respondLogs(w, logs, err, "list employee time logs")
}

// ListByEmployee godoc
// @Summary List time logs of an employee
// @Tags Time Logs
// @Produce json
// @Param employeeId path int true "Employee user ID"
// @Success 200 {object} domain.DataResponse{data=[]domain.TimeLogView}
// @Security BearerAuth
// @Router /time-logs/employee/{employeeId} [get]
func (h *TimeLogHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "employeeId")
	if !ok {
		return
	}
	logs, err := h.timeLogService.ListByEmployee(r.Context(), id)
	h.respondLogs(w, logs, err, "list time logs by employee")
}

// ListByProduction godoc
// @Summary List time logs of a production user
// @Tags Time Logs
// @Produce json
// @Param productionId path int true "Production user ID"
// @Success 200 {object} domain.DataResponse{data=[]domain.TimeLogView}
// @Security BearerAuth
// @Router /time-logs/production/{productionId} [get]
func (h *TimeLogHandler) ListByProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "productionId")
	if !ok {
		return
	}
	logs, err := h.timeLogService.ListByProduction(r.Context(), id)
	h.respondLogs(w, logs, err, "list time logs by production")
}

func (h *TimeLogHandler) respondLogs(w http.ResponseWriter, logs []domain.TimeLogView, err error, action string) {
	if err != nil {
		handleServiceError(w, h.logger, err, action)
		return
	}
	if logs == nil {
		logs = []domain.TimeLogView{}
	}
	respondData(w, logs)
}

// JobLogs godoc
// @Summary Time logs of a job for a user
// @Description Employees and production users get their own logs under a header named by their role. Admins, or requests without a user id, get the logs grouped per assignee. Assignments without a log yet appear as pending entries.
// @Tags Time Logs
// @Produce json
// @Param employeeId path int false "User ID"
// @Param jobId path int true "Job ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-logs/employee/{employeeId}/job/{jobId} [get]
// @Router /time-logs/employee/job/{jobId} [get]
func (h *TimeLogHandler) JobLogs(w http.ResponseWriter, r *http.Request) {
	jobID, ok := urlID(w, r, "jobId")
	if !ok {
		return
	}
	var userID *int64
	if chi.URLParam(r, "employeeId") != "" {
		id, ok := urlID(w, r, "employeeId")
		if !ok {
			return
		}
		userID = &id
	}

	view, err := h.timeLogService.JobLogs(r.Context(), userID, jobID)
	if err != nil {
		handleServiceError(w, h.logger, err, "load job time logs", zap.Int64("job_id", jobID))
		return
	}

	if view.Owner != nil {
		respondJSON(w, http.StatusOK, envelope{
			"success": true,
			view.Role: view.Owner,
			"logs":    view.Logs,
		})
		return
	}
	productions := view.Productions
	if productions == nil {
		productions = []domain.ProductionLogGroup{}
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":     true,
		"job_id":      view.JobID,
		"job_no":      view.JobNo,
		"productions": productions,
	})
}

// GetByID godoc
// @Summary Get time log
// @Tags Time Logs
// @Produce json
// @Param id path int true "Time log ID"
// @Success 200 {object} domain.DataResponse{data=domain.TimeLogView}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-logs/{id} [get]
func (h *TimeLogHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	log, err := h.timeLogService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get time log", zap.Int64("time_log_id", id))
		return
	}
	respondData(w, log)
}

// Update godoc
// @Summary Update time log
// @Description Fields left out keep their stored values. Snapshots never change.
// @Tags Time Logs
// @Accept json
// @Produce json
// @Param id path int true "Time log ID"
// @Param request body domain.UpdateTimeLogRequest true "Changed fields"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-logs/{id} [put]
func (h *TimeLogHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateTimeLogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.timeLogService.Update(r.Context(), id, &req); err != nil {
		handleServiceError(w, h.logger, err, "update time log", zap.Int64("time_log_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Time log updated")
}

// Delete godoc
// @Summary Delete time log
// @Tags Time Logs
// @Produce json
// @Param id path int true "Time log ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /time-logs/{id} [delete]
func (h *TimeLogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.timeLogService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete time log", zap.Int64("time_log_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Time log deleted")
}
