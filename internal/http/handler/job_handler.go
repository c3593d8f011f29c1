package handler

import (
	"net/http"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type JobHandler struct {
	jobService *service.JobService
	logger     *zap.Logger
}

func NewJobHandler(jobService *service.JobService, logger *zap.Logger) *JobHandler {
	return &JobHandler{
		jobService: jobService,
		logger:     logger,
	}
}

// Create godoc
// @Summary Create job
// @Description Create a job under an existing project. The job number is taken from the job sequence.
// @Tags Jobs
// @Accept json
// @Produce json
// @Param request body domain.CreateJobRequest true "Job data"
// @Success 201 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	job, err := h.jobService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create job")
		return
	}

	respondJSON(w, http.StatusCreated, envelope{
		"success":      true,
		"message":      "Job created successfully",
		"job_id":       job.ID,
		"job_no":       job.JobNo,
		"project_no":   job.ProjectNo,
		"project_name": job.ProjectName,
		"job_status":   job.JobStatus,
	})
}

// List godoc
// @Summary List jobs
// @Tags Jobs
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.JobView}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	jobs, err := h.jobService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list jobs")
		return
	}
	respondData(w, jobs)
}

// GetByID godoc
// @Summary Get job by ID
// @Tags Jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} domain.DataResponse{data=domain.JobView}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	job, err := h.jobService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get job", zap.Int64("job_id", id))
		return
	}
	respondData(w, job)
}

// ListByProject godoc
// @Summary List jobs of a project
// @Description Jobs of a project with their current assignment and booked time
// @Tags Jobs
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} domain.DataResponse{data=[]domain.JobWithAssignment}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/project/{projectId} [get]
func (h *JobHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlID(w, r, "projectId")
	if !ok {
		return
	}

	jobs, err := h.jobService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list project jobs", zap.Int64("project_id", projectID))
		return
	}
	respondData(w, jobs)
}

// EmployeeHistory godoc
// @Summary Job history of an employee
// @Tags Jobs
// @Produce json
// @Param employeeId path int true "Employee user ID"
// @Success 200 {object} domain.DataResponse{data=[]domain.JobHistoryEntry}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/jobhistoryemployee/{employeeId} [get]
func (h *JobHandler) EmployeeHistory(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, "employeeId", true)
}

// ProductionHistory godoc
// @Summary Job history of a production user
// @Tags Jobs
// @Produce json
// @Param productionId path int true "Production user ID"
// @Success 200 {object} domain.DataResponse{data=[]domain.JobHistoryEntry}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/jobHistoryproduction/{productionId} [get]
func (h *JobHandler) ProductionHistory(w http.ResponseWriter, r *http.Request) {
	h.history(w, r, "productionId", false)
}

func (h *JobHandler) history(w http.ResponseWriter, r *http.Request, param string, asEmployee bool) {
	userID, ok := urlID(w, r, param)
	if !ok {
		return
	}

	rows, err := h.jobService.History(r.Context(), userID, asEmployee)
	if err != nil {
		handleServiceError(w, h.logger, err, "load job history", zap.Int64("user_id", userID))
		return
	}
	respondData(w, rows)
}

// Update godoc
// @Summary Update job
// @Tags Jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param request body domain.UpdateJobRequest true "Job data"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.jobService.Update(r.Context(), id, &req); err != nil {
		handleServiceError(w, h.logger, err, "update job", zap.Int64("job_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Job updated successfully")
}

// Delete godoc
// @Summary Delete job
// @Description Delete a job and remove it from every assignment that lists it
// @Tags Jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /jobs/{id} [delete]
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.jobService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete job", zap.Int64("job_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Job deleted successfully")
}
