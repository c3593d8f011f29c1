package handler

import (
	"net/http"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// AssignmentHandler serves the job assignment workflow under /assignjobs
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
	logger            *zap.Logger
}

func NewAssignmentHandler(assignmentService *service.AssignmentService, logger *zap.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentService: assignmentService,
		logger:            logger,
	}
}

// Assign godoc
// @Summary Assign jobs
// @Description Assign a set of jobs to a production user and/or an employee. Re-sending the same assignment updates it in place.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body domain.AssignJobRequest true "Assignment"
// @Success 201 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs [post]
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req domain.AssignJobRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.assignmentService.Assign(r.Context(), &req); err != nil {
		handleServiceError(w, h.logger, err, "assign jobs")
		return
	}
	respondMessage(w, http.StatusCreated, "Job assigned successfully & jobs updated")
}

// ProductionAssign godoc
// @Summary Delegate production assignments to an employee
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body domain.ProductionAssignRequest true "Assignments and employee"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/production-assign [put]
func (h *AssignmentHandler) ProductionAssign(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductionAssignRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.assignmentService.ProductionAssign(r.Context(), &req); err != nil {
		handleServiceError(w, h.logger, err, "delegate assignments")
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":        true,
		"message":        "Jobs assigned to employee successfully",
		"employee_id":    req.EmployeeID,
		"assign_job_ids": req.AssignJobIDs,
	})
}

// EmployeeComplete godoc
// @Summary Employee completes a job
// @Tags Assignments
// @Produce json
// @Param assign_job_id path int true "Assignment ID"
// @Param job_id path int true "Job ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/employee-complete/{assign_job_id}/{job_id} [put]
func (h *AssignmentHandler) EmployeeComplete(w http.ResponseWriter, r *http.Request) {
	assignJobID, jobID, ok := h.employeePath(w, r)
	if !ok {
		return
	}
	if err := h.assignmentService.EmployeeComplete(r.Context(), assignJobID, jobID); err != nil {
		handleServiceError(w, h.logger, err, "complete job", zap.Int64("assign_job_id", assignJobID), zap.Int64("job_id", jobID))
		return
	}
	respondMessage(w, http.StatusOK, "Job completed successfully")
}

// EmployeeReject godoc
// @Summary Employee rejects a job
// @Tags Assignments
// @Produce json
// @Param assign_job_id path int true "Assignment ID"
// @Param job_id path int true "Job ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/employee-reject/{assign_job_id}/{job_id} [put]
func (h *AssignmentHandler) EmployeeReject(w http.ResponseWriter, r *http.Request) {
	assignJobID, jobID, ok := h.employeePath(w, r)
	if !ok {
		return
	}
	if err := h.assignmentService.EmployeeReject(r.Context(), assignJobID, jobID); err != nil {
		handleServiceError(w, h.logger, err, "reject job", zap.Int64("assign_job_id", assignJobID), zap.Int64("job_id", jobID))
		return
	}
	respondMessage(w, http.StatusOK, "Job rejected by employee")
}

func (h *AssignmentHandler) employeePath(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	assignJobID, ok := urlID(w, r, "assign_job_id")
	if !ok {
		return 0, 0, false
	}
	jobID, ok := urlID(w, r, "job_id")
	if !ok {
		return 0, 0, false
	}
	return assignJobID, jobID, true
}

// ProductionComplete godoc
// @Summary Production completes an assignment
// @Description Completes the assignment and every job it lists
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/production-complete/{id} [put]
func (h *AssignmentHandler) ProductionComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.assignmentService.ProductionComplete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "complete assignment", zap.Int64("assign_job_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Production completed successfully")
}

// ProductionReturn godoc
// @Summary Production returns assignments
// @Description Returns the assignments to admin. The jobs are completed and unassigned.
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body domain.AssignJobIDsRequest true "Assignment IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/production-return [put]
func (h *AssignmentHandler) ProductionReturn(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "Production returned. Jobs marked as return & unassigned.", func(ids []int64) (*domain.BatchResult, error) {
		return h.assignmentService.ProductionReturn(r.Context(), ids, false)
	})
}

// ProductionReturnJobStatus godoc
// @Summary Production returns assignments and marks the jobs returned
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body domain.AssignJobIDsRequest true "Assignment IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/production-return-job-status [put]
func (h *AssignmentHandler) ProductionReturnJobStatus(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "Jobs returned successfully", func(ids []int64) (*domain.BatchResult, error) {
		return h.assignmentService.ProductionReturn(r.Context(), ids, true)
	})
}

// ProductionReject godoc
// @Summary Production rejects assignments
// @Tags Assignments
// @Accept json
// @Produce json
// @Param request body domain.AssignJobIDsRequest true "Assignment IDs"
// @Success 200 {object} domain.BatchResult
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/production-reject [put]
func (h *AssignmentHandler) ProductionReject(w http.ResponseWriter, r *http.Request) {
	h.batch(w, r, "Production rejected successfully", func(ids []int64) (*domain.BatchResult, error) {
		return h.assignmentService.ProductionReject(r.Context(), ids)
	})
}

func (h *AssignmentHandler) batch(w http.ResponseWriter, r *http.Request, message string, run func([]int64) (*domain.BatchResult, error)) {
	var req domain.AssignJobIDsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ids := req.Batch()
	result, err := run(ids)
	if err != nil {
		handleServiceError(w, h.logger, err, "run production batch", zap.Int64s("assign_job_ids", ids))
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":        true,
		"message":        message,
		"assignJobIds":   result.AssignJobIDs,
		"affectedJobIds": result.AffectedJobIDs,
	})
}

// Delete godoc
// @Summary Delete assignment
// @Description Deletes the assignment row only; its jobs keep their status
// @Tags Assignments
// @Produce json
// @Param id path int true "Assignment ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /assignjobs/{id} [delete]
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.assignmentService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete assignment", zap.Int64("assign_job_id", id))
		return
	}
	respondJSON(w, http.StatusOK, envelope{"success": true})
}

// ListByEmployee godoc
// @Summary Assignments of an employee
// @Tags Assignments
// @Produce json
// @Param employee_id path int true "Employee user ID"
// @Success 200 {object} domain.DataResponse{data=[]domain.AssignmentGroup}
// @Security BearerAuth
// @Router /assignjobs/employee/{employee_id} [get]
func (h *AssignmentHandler) ListByEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "employee_id")
	if !ok {
		return
	}
	groups, err := h.assignmentService.ListByEmployee(r.Context(), id)
	h.respondGroups(w, groups, err)
}

// ListAllEmployee godoc
// @Summary Assignments of every employee
// @Tags Assignments
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.AssignmentGroup}
// @Security BearerAuth
// @Router /assignjobs/employeeall [get]
func (h *AssignmentHandler) ListAllEmployee(w http.ResponseWriter, r *http.Request) {
	groups, err := h.assignmentService.ListAllEmployee(r.Context())
	h.respondGroups(w, groups, err)
}

// ListByProduction godoc
// @Summary Assignments of a production user not yet delegated
// @Tags Assignments
// @Produce json
// @Param production_id path int true "Production user ID"
// @Success 200 {object} domain.DataResponse{data=[]domain.AssignmentGroup}
// @Security BearerAuth
// @Router /assignjobs/production/{production_id} [get]
func (h *AssignmentHandler) ListByProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "production_id")
	if !ok {
		return
	}
	groups, err := h.assignmentService.ListByProduction(r.Context(), id)
	h.respondGroups(w, groups, err)
}

// ListAllProduction godoc
// @Summary Production assignments of every production user
// @Tags Assignments
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.AssignmentGroup}
// @Security BearerAuth
// @Router /assignjobs/productionall [get]
func (h *AssignmentHandler) ListAllProduction(w http.ResponseWriter, r *http.Request) {
	groups, err := h.assignmentService.ListAllProduction(r.Context())
	h.respondGroups(w, groups, err)
}

func (h *AssignmentHandler) respondGroups(w http.ResponseWriter, groups []domain.AssignmentGroup, err error) {
	if err != nil {
		h.logger.Error("failed to list assignments", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Server Error")
		return
	}
	if groups == nil {
		groups = []domain.AssignmentGroup{}
	}
	respondData(w, groups)
}

// JobsByStatus returns the handler of one per-status listing. With param set
// the listing is scoped to the production user named by that path parameter.
//
// @Summary Production jobs by assignment status
// @Tags Assignments
// @Produce json
// @Param production_id path int false "Production user ID"
// @Success 200 {object} domain.ListResponse{data=[]domain.AssignedJobRow}
// @Security BearerAuth
// @Router /assignjobs/jobs/in-progress/{production_id} [get]
// @Router /assignjobs/jobs/allInprogress [get]
// @Router /assignjobs/jobs/complete/{production_id} [get]
// @Router /assignjobs/jobs/allcomplete [get]
// @Router /assignjobs/jobs/reject/{production_id} [get]
// @Router /assignjobs/jobs/allreject [get]
func (h *AssignmentHandler) JobsByStatus(status domain.ProductionStatus, param string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var productionID *int64
		if param != "" {
			id, ok := urlID(w, r, param)
			if !ok {
				return
			}
			productionID = &id
		}

		rows, err := h.assignmentService.JobsByStatus(r.Context(), productionID, status)
		if err != nil {
			handleServiceError(w, h.logger, err, "list jobs by status", zap.String("status", string(status)))
			return
		}
		respondList(w, rows)
	}
}
