package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// poDocumentField is the multipart field carrying the PO document
const poDocumentField = "po_document"

type PurchaseOrderHandler struct {
	poService   *service.PurchaseOrderService
	maxUploadMB int64
	logger      *zap.Logger
}

func NewPurchaseOrderHandler(poService *service.PurchaseOrderService, maxUploadMB int64, logger *zap.Logger) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{
		poService:   poService,
		maxUploadMB: maxUploadMB,
		logger:      logger,
	}
}

// poJSONRequest is the JSON form of a PO request; po_amount may be a number
// or a formatted string
type poJSONRequest struct {
	PONumber         string      `json:"po_number"`
	ProjectID        *int64      `json:"project_id"`
	ClientID         *int64      `json:"client_id"`
	CostEstimationID *int64      `json:"cost_estimation_id"`
	POAmount         any         `json:"po_amount"`
	PODate           domain.Date `json:"po_date"`
	Currency         string      `json:"currency"`
}

// readRequest decodes a PO request from a multipart form or a JSON body. On
// failure it writes the response and returns false.
func (h *PurchaseOrderHandler) readRequest(w http.ResponseWriter, r *http.Request) (*domain.PurchaseOrderRequest, *domain.Upload, bool) {
	if !isMultipart(r) {
		var body poJSONRequest
		dec := json.NewDecoder(r.Body)
		dec.UseNumber()
		if err := dec.Decode(&body); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body")
			return nil, nil, false
		}
		amount := ""
		if body.POAmount != nil {
			amount = fmt.Sprint(body.POAmount)
		}
		return &domain.PurchaseOrderRequest{
			PONumber:         body.PONumber,
			ProjectID:        body.ProjectID,
			ClientID:         body.ClientID,
			CostEstimationID: body.CostEstimationID,
			POAmount:         amount,
			PODate:           body.PODate,
			Currency:         body.Currency,
		}, nil, true
	}

	if !parseMultipart(w, r, h.maxUploadMB) {
		return nil, nil, false
	}
	req := &domain.PurchaseOrderRequest{
		PONumber: r.FormValue("po_number"),
		POAmount: r.FormValue("po_amount"),
		Currency: r.FormValue("currency"),
	}
	var err error
	if req.ProjectID, err = formInt64(r, "project_id"); err == nil {
		if req.ClientID, err = formInt64(r, "client_id"); err == nil {
			if req.CostEstimationID, err = formInt64(r, "cost_estimation_id"); err == nil {
				req.PODate, err = formDate(r, "po_date")
			}
		}
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return nil, nil, false
	}

	upload, err := formFile(r, poDocumentField)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid file upload: %s", poDocumentField))
		return nil, nil, false
	}
	return req, upload, true
}

// Create godoc
// @Summary Create purchase order
// @Description Creates a PO against a cost estimate and marks the estimate's PO received. Accepts multipart with an optional po_document file, or JSON.
// @Tags Purchase Orders
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param po_number formData string true "PO number"
// @Param project_id formData int true "Project ID"
// @Param client_id formData int true "Client ID"
// @Param cost_estimation_id formData int true "Estimate ID"
// @Param po_amount formData string true "Amount, locale formatted"
// @Param po_date formData string true "PO date (YYYY-MM-DD)"
// @Param po_document formData file false "PO document"
// @Success 201 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchaseorders [post]
func (h *PurchaseOrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, upload, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	po, err := h.poService.Create(r.Context(), req, upload)
	if err != nil {
		handleServiceError(w, h.logger, err, "create purchase order", zap.String("po_number", strings.TrimSpace(req.PONumber)))
		return
	}
	respondJSON(w, http.StatusCreated, envelope{
		"success": true,
		"message": "Purchase Order created successfully",
		"id":      po.ID,
	})
}

// List godoc
// @Summary List purchase orders
// @Tags Purchase Orders
// @Produce json
// @Success 200 {object} domain.ListResponse{data=[]domain.PurchaseOrderView}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchaseorders [get]
func (h *PurchaseOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.poService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list purchase orders")
		return
	}
	respondList(w, rows)
}

// ListByProject godoc
// @Summary List purchase orders of a project
// @Tags Purchase Orders
// @Produce json
// @Param projectId path int true "Project ID"
// @Success 200 {object} domain.ListResponse{data=[]domain.PurchaseOrderView}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchaseorders/project/{projectId} [get]
func (h *PurchaseOrderHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := urlID(w, r, "projectId")
	if !ok {
		return
	}
	rows, err := h.poService.ListByProject(r.Context(), projectID)
	if err != nil {
		handleServiceError(w, h.logger, err, "list project purchase orders", zap.Int64("project_id", projectID))
		return
	}
	respondList(w, rows)
}

// GetByID godoc
// @Summary Get purchase order
// @Tags Purchase Orders
// @Produce json
// @Param id path int true "Purchase order ID"
// @Success 200 {object} domain.DataResponse{data=domain.PurchaseOrderView}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchaseorders/{id} [get]
func (h *PurchaseOrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	po, err := h.poService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get purchase order", zap.Int64("purchase_order_id", id))
		return
	}
	respondData(w, po)
}

// Update godoc
// @Summary Update purchase order
// @Description The stored document is replaced only when a new po_document is uploaded
// @Tags Purchase Orders
// @Accept multipart/form-data
// @Accept json
// @Produce json
// @Param id path int true "Purchase order ID"
// @Param po_document formData file false "PO document"
// @Success 200 {object} domain.MessageResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchaseorders/{id} [put]
func (h *PurchaseOrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req, upload, ok := h.readRequest(w, r)
	if !ok {
		return
	}

	if _, err := h.poService.Update(r.Context(), id, req, upload); err != nil {
		handleServiceError(w, h.logger, err, "update purchase order", zap.Int64("purchase_order_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Purchase Order updated successfully")
}

// Delete godoc
// @Summary Delete purchase order
// @Description Deletes the PO and rolls its estimate's PO status back to pending
// @Tags Purchase Orders
// @Produce json
// @Param id path int true "Purchase order ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /purchaseorders/{id} [delete]
func (h *PurchaseOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.poService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete purchase order", zap.Int64("purchase_order_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Purchase Order deleted & estimate rolled back")
}
