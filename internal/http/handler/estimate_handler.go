package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type EstimateHandler struct {
	estimateService *service.EstimateService
	logger          *zap.Logger
}

func NewEstimateHandler(estimateService *service.EstimateService, logger *zap.Logger) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
		logger:          logger,
	}
}

// syncMessage appends what a fan-out updated to prefix, in the wording the
// clients already display
func syncMessage(prefix string, report *domain.SyncReport) string {
	var b strings.Builder
	b.WriteString(prefix)
	if report == nil {
		return b.String()
	}
	if n := len(report.PurchaseOrdersSynced); n > 0 {
		fmt.Fprintf(&b, " %d PO(s) amount synced.", n)
	}
	if n := len(report.InvoicesSynced); n > 0 {
		fmt.Fprintf(&b, " %d Invoice(s) amount synced.", n)
	}
	if report.EstimateSynced {
		b.WriteString(" Cost Estimate amount synced.")
	}
	if n := len(report.Failures); n > 0 {
		fmt.Fprintf(&b, " %d linked document(s) failed to sync.", n)
	}
	return b.String()
}

// Create godoc
// @Summary Create cost estimate
// @Tags Estimates
// @Accept json
// @Produce json
// @Param request body domain.EstimateRequest true "Estimate data"
// @Success 201 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates [post]
func (h *EstimateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.EstimateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	est, err := h.estimateService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create estimate")
		return
	}
	respondJSON(w, http.StatusCreated, envelope{
		"success":      true,
		"message":      "Estimate created successfully",
		"id":           est.ID,
		"estimate_no":  est.EstimateNo,
		"status_flags": domain.ComputeEstimateFlags(est.CEPOStatus, est.CEInvoiceStatus),
	})
}

// List godoc
// @Summary List cost estimates
// @Tags Estimates
// @Produce json
// @Success 200 {object} domain.ListResponse{data=[]domain.EstimateView}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates [get]
func (h *EstimateHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.estimateService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list estimates")
		return
	}
	respondList(w, rows)
}

// ListByProject godoc
// @Summary List cost estimates of a project
// @Tags Estimates
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} domain.ListResponse{data=[]domain.EstimateView}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates/project/{projectId} [get]
func (h *EstimateHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlID(w, r, "projectId")
	if !ok {
		return
	}
	rows, err := h.estimateService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list project estimates", zap.Int64("project_id", projectID))
		return
	}
	respondList(w, rows)
}

// GetByID godoc
// @Summary Get cost estimate
// @Tags Estimates
// @Produce json
// @Param id path int true "Estimate ID"
// @Success 200 {object} domain.DataResponse{data=domain.EstimateView}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates/{id} [get]
func (h *EstimateHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	est, err := h.estimateService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get estimate", zap.Int64("estimate_id", id))
		return
	}
	respondData(w, est)
}

// PDFData godoc
// @Summary Printable data of a cost estimate
// @Tags Estimates
// @Produce json
// @Param id path int true "Estimate ID"
// @Success 200 {object} domain.DataResponse{data=domain.EstimatePDF}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimatePdf/{id} [get]
func (h *EstimateHandler) PDFData(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	data, err := h.estimateService.PDFData(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "load estimate pdf data", zap.Int64("estimate_id", id))
		return
	}
	respondData(w, data)
}

// Duplicate godoc
// @Summary Duplicate cost estimate
// @Description Copies the estimate under a new number with its statuses reset to pending
// @Tags Estimates
// @Produce json
// @Param id path int true "Estimate ID"
// @Success 201 {object} domain.CreatedResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates/{id}/duplicate [post]
func (h *EstimateHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	est, err := h.estimateService.Duplicate(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "duplicate estimate", zap.Int64("estimate_id", id))
		return
	}
	respondJSON(w, http.StatusCreated, envelope{
		"success":     true,
		"message":     "Estimate duplicated successfully",
		"id":          est.ID,
		"estimate_no": est.EstimateNo,
	})
}

// Update godoc
// @Summary Update cost estimate
// @Description Reprices the estimate and pushes the new total to its purchase orders and invoices. Sync failures are listed in the response.
// @Tags Estimates
// @Accept json
// @Produce json
// @Param id path int true "Estimate ID"
// @Param request body domain.EstimateRequest true "Estimate data"
// @Success 200 {object} domain.SyncResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates/{id} [put]
func (h *EstimateHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req domain.EstimateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	est, report, err := h.estimateService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update estimate", zap.Int64("estimate_id", id))
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":      true,
		"message":      syncMessage("Estimate updated successfully.", report),
		"status_flags": domain.ComputeEstimateFlags(est.CEPOStatus, est.CEInvoiceStatus),
		"sync":         report,
	})
}

// Resync godoc
// @Summary Re-sync linked documents
// @Description Pushes the estimate's stored total to its purchase orders and invoices again
// @Tags Estimates
// @Produce json
// @Param id path int true "Estimate ID"
// @Success 200 {object} domain.SyncResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates/{id}/resync [post]
func (h *EstimateHandler) Resync(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	report, err := h.estimateService.Resync(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "resync estimate", zap.Int64("estimate_id", id))
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": report.OK(),
		"message": syncMessage("Estimate re-synced.", report),
		"sync":    report,
	})
}

// Delete godoc
// @Summary Delete cost estimate
// @Tags Estimates
// @Produce json
// @Param id path int true "Estimate ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /costestimates/{id} [delete]
func (h *EstimateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.estimateService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete estimate", zap.Int64("estimate_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Estimate deleted successfully")
}
