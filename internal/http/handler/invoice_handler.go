package handler

import (
	"net/http"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

func respondInvoiceCreated(w http.ResponseWriter, inv *domain.Invoice) {
	respondJSON(w, http.StatusCreated, envelope{
		"success":       true,
		"message":       "Invoice created & cost estimate updated successfully",
		"id":            inv.ID,
		"invoice_no":    inv.InvoiceNo,
		"payment_flags": domain.ComputeInvoiceFlags(inv.InvoiceStatus, inv.PaymentStatus),
	})
}

// Create godoc
// @Summary Create invoice
// @Description Creates an invoice. An invoice linked to an estimate marks the estimate invoiced; one invoice per estimate.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param request body domain.InvoiceRequest true "Invoice data"
// @Success 201 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices [post]
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.InvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inv, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create invoice")
		return
	}
	respondInvoiceCreated(w, inv)
}

// CreateFromEstimate godoc
// @Summary Create invoice from cost estimate
// @Tags Invoices
// @Produce json
// @Param estimateId path int true "Estimate ID"
// @Success 201 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices/from-estimate/{estimateId} [post]
func (h *InvoiceHandler) CreateFromEstimate(w http.ResponseWriter, r *http.Request) {
	estimateID, ok := urlID(w, r, "estimateId")
	if !ok {
		return
	}

	inv, err := h.invoiceService.CreateFromEstimate(r.Context(), estimateID)
	if err != nil {
		handleServiceError(w, h.logger, err, "create invoice from estimate", zap.Int64("estimate_id", estimateID))
		return
	}
	respondInvoiceCreated(w, inv)
}

// List godoc
// @Summary List invoices
// @Tags Invoices
// @Produce json
// @Success 200 {object} domain.ListResponse{data=[]domain.InvoiceView}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices [get]
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.invoiceService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list invoices")
		return
	}
	respondList(w, rows)
}

// ListByProject godoc
// @Summary List invoices of a project
// @Tags Invoices
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} domain.ListResponse{data=[]domain.InvoiceView}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices/project/{projectId} [get]
func (h *InvoiceHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlID(w, r, "projectId")
	if !ok {
		return
	}
	rows, err := h.invoiceService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list project invoices", zap.Int64("project_id", projectID))
		return
	}
	respondList(w, rows)
}

// GetByID godoc
// @Summary Get invoice
// @Tags Invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.DataResponse{data=domain.InvoiceView}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [get]
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	inv, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get invoice", zap.Int64("invoice_id", id))
		return
	}
	respondData(w, inv)
}

// PDFData godoc
// @Summary Printable data of an invoice
// @Tags Invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.DataResponse{data=domain.InvoicePDF}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices/pdf/{id} [get]
func (h *InvoiceHandler) PDFData(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	data, err := h.invoiceService.PDFData(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "load invoice pdf data", zap.Int64("invoice_id", id))
		return
	}
	respondData(w, data)
}

// Update godoc
// @Summary Update invoice
// @Description Reprices the invoice and pushes the new total to its purchase orders and estimate. Sync failures are listed in the response.
// @Tags Invoices
// @Accept json
// @Produce json
// @Param id path int true "Invoice ID"
// @Param request body domain.InvoiceRequest true "Invoice data"
// @Success 200 {object} domain.SyncResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [put]
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req domain.InvoiceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	_, report, err := h.invoiceService.Update(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "update invoice", zap.Int64("invoice_id", id))
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": syncMessage("Invoice updated successfully.", report),
		"sync":    report,
	})
}

// Delete godoc
// @Summary Delete invoice
// @Description Deletes the invoice and rolls its estimate back to not invoiced
// @Tags Invoices
// @Produce json
// @Param id path int true "Invoice ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /invoices/{id} [delete]
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.invoiceService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete invoice", zap.Int64("invoice_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Invoice deleted successfully")
}
