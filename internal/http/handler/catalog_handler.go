package handler

import (
	"fmt"
	"net/http"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// CatalogHandler serves one name-only lookup table. The router mounts one
// instance per catalog kind.
type CatalogHandler struct {
	catalogService *service.CatalogService
	kind           domain.CatalogKind
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, kind domain.CatalogKind, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		kind:           kind,
		logger:         logger.With(zap.String("catalog", string(kind))),
	}
}

// Create godoc
// @Summary Create catalog entry
// @Description Same contract on /brand, /subbrands, /flavours, /packtypes, /packcodes and /industries
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param request body domain.CatalogRequest true "Name"
// @Success 200 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /brand [post]
func (h *CatalogHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CatalogRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	item, err := h.catalogService.Create(r.Context(), h.kind, &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create catalog entry")
		return
	}
	respondJSON(w, http.StatusOK, envelope{"success": true, "id": item.ID})
}

// List godoc
// @Summary List catalog entries
// @Tags Catalogs
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.CatalogItem}
// @Security BearerAuth
// @Router /brand [get]
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalogService.List(r.Context(), h.kind)
	if err != nil {
		handleServiceError(w, h.logger, err, "list catalog entries")
		return
	}
	if items == nil {
		items = []domain.CatalogItem{}
	}
	respondData(w, items)
}

// Delete godoc
// @Summary Delete catalog entry
// @Tags Catalogs
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} domain.MessageResponse
// @Security BearerAuth
// @Router /brand/{id} [delete]
func (h *CatalogHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalogService.Delete(r.Context(), h.kind, id); err != nil {
		handleServiceError(w, h.logger, err, "delete catalog entry", zap.Int64("id", id))
		return
	}
	respondMessage(w, http.StatusOK, fmt.Sprintf("%s deleted", h.kind.Label()))
}

// BulkDelete godoc
// @Summary Delete several catalog entries
// @Tags Catalogs
// @Accept json
// @Produce json
// @Param request body domain.BulkDeleteRequest true "IDs"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /brand/bulk-delete [delete]
func (h *CatalogHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req domain.BulkDeleteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	n, err := h.catalogService.BulkDelete(r.Context(), h.kind, req.IDs)
	if err != nil {
		handleServiceError(w, h.logger, err, "bulk delete catalog entries", zap.Int64s("ids", req.IDs))
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":      true,
		"message":      fmt.Sprintf("Selected %ss deleted successfully", h.kind.Label()),
		"deletedCount": n,
	})
}
