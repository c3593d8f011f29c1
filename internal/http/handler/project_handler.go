package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projectService *service.ProjectService
	logger         *zap.Logger
}

func NewProjectHandler(projectService *service.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		logger:         logger,
	}
}

// List godoc
// @Summary List projects
// @Tags Projects
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.Project}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /projects [get]
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list projects")
		return
	}
	respondData(w, projects)
}

// ListByStatus godoc
// @Summary List projects by status
// @Tags Projects
// @Produce json
// @Param status path string true "Project status"
// @Success 200 {object} domain.DataResponse{data=[]domain.Project}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /projects/status/{status} [get]
func (h *ProjectHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	projects, err := h.projectService.ListByStatus(r.Context(), status)
	if err != nil {
		handleServiceError(w, h.logger, err, "list projects by status", zap.String("status", status))
		return
	}
	respondData(w, projects)
}

// Create godoc
// @Summary Create project
// @Description Creates a project numbered from the project sequence. The budget may be a number or a formatted amount.
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body domain.ProjectRequest true "Project data"
// @Success 201 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /projects [post]
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	project, err := h.projectService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create project")
		return
	}
	respondJSON(w, http.StatusCreated, envelope{
		"success":    true,
		"message":    "Project created successfully",
		"id":         project.ID,
		"project_no": project.ProjectNo,
	})
}

// GetByID godoc
// @Summary Get project
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} domain.DataResponse{data=domain.Project}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /projects/{id} [get]
func (h *ProjectHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	project, err := h.projectService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get project", zap.Int64("project_id", id))
		return
	}
	respondData(w, project)
}

// Overview godoc
// @Summary Project overview
// @Description Job counts, days remaining, booked hours, purchase order stats and recent activity of a project
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} domain.DataResponse{data=domain.ProjectOverview}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /projects/overview/{id} [get]
func (h *ProjectHandler) Overview(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	overview, err := h.projectService.Overview(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "load project overview", zap.Int64("project_id", id))
		return
	}
	respondData(w, overview)
}

// Update godoc
// @Summary Update project
// @Tags Projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body domain.ProjectRequest true "Project data"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /projects/{id} [put]
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req domain.ProjectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.projectService.Update(r.Context(), id, &req); err != nil {
		handleServiceError(w, h.logger, err, "update project", zap.Int64("project_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Project updated successfully")
}

// Delete godoc
// @Summary Delete project
// @Description Deletes the project with its jobs, assignments and time logs
// @Tags Projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /projects/{id} [delete]
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.projectService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete project", zap.Int64("project_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Project deleted successfully")
}
