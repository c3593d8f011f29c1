package handler

import (
	"net/http"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// ClientSupplierHandler serves the shared client and supplier directory
type ClientSupplierHandler struct {
	clientSupplierService *service.ClientSupplierService
	logger                *zap.Logger
}

func NewClientSupplierHandler(clientSupplierService *service.ClientSupplierService, logger *zap.Logger) *ClientSupplierHandler {
	return &ClientSupplierHandler{
		clientSupplierService: clientSupplierService,
		logger:                logger,
	}
}

// Create godoc
// @Summary Create client or supplier
// @Description `type` and `name` are required; `type` is client or supplier
// @Tags Clients & Suppliers
// @Accept json
// @Produce json
// @Param request body domain.ClientSupplierRequest true "Counterparty"
// @Success 200 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clientsuppliers [post]
func (h *ClientSupplierHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ClientSupplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	cs, err := h.clientSupplierService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create client/supplier")
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Client/Supplier created successfully",
		"id":      cs.ID,
	})
}

// List godoc
// @Summary List clients and suppliers
// @Tags Clients & Suppliers
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.ClientSupplier}
// @Security BearerAuth
// @Router /clientsuppliers [get]
func (h *ClientSupplierHandler) List(w http.ResponseWriter, r *http.Request) {
	h.listByKind(w, r, "")
}

// ListClients godoc
// @Summary List clients
// @Tags Clients & Suppliers
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.ClientSupplier}
// @Security BearerAuth
// @Router /clients [get]
func (h *ClientSupplierHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	h.listByKind(w, r, service.KindClient)
}

// ListSuppliers godoc
// @Summary List suppliers
// @Tags Clients & Suppliers
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.ClientSupplier}
// @Security BearerAuth
// @Router /suppliers [get]
func (h *ClientSupplierHandler) ListSuppliers(w http.ResponseWriter, r *http.Request) {
	h.listByKind(w, r, service.KindSupplier)
}

func (h *ClientSupplierHandler) listByKind(w http.ResponseWriter, r *http.Request, kind string) {
	items, err := h.clientSupplierService.List(r.Context(), kind)
	if err != nil {
		handleServiceError(w, h.logger, err, "list clients/suppliers", zap.String("kind", kind))
		return
	}
	if items == nil {
		items = []domain.ClientSupplier{}
	}
	respondData(w, items)
}

// GetByID godoc
// @Summary Get client or supplier
// @Tags Clients & Suppliers
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} domain.DataResponse{data=domain.ClientSupplier}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clientsuppliers/{id} [get]
func (h *ClientSupplierHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	cs, err := h.clientSupplierService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get client/supplier", zap.Int64("id", id))
		return
	}
	respondData(w, cs)
}

// Update godoc
// @Summary Update client or supplier
// @Tags Clients & Suppliers
// @Accept json
// @Produce json
// @Param id path int true "Record ID"
// @Param request body domain.ClientSupplierRequest true "Counterparty"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clientsuppliers/{id} [put]
func (h *ClientSupplierHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req domain.ClientSupplierRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := h.clientSupplierService.Update(r.Context(), id, &req); err != nil {
		handleServiceError(w, h.logger, err, "update client/supplier", zap.Int64("id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Updated successfully")
}

// Delete godoc
// @Summary Delete client or supplier
// @Tags Clients & Suppliers
// @Produce json
// @Param id path int true "Record ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /clientsuppliers/{id} [delete]
func (h *ClientSupplierHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.clientSupplierService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete client/supplier", zap.Int64("id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Deleted successfully")
}
