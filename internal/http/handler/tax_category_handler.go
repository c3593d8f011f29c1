package handler

import (
	"net/http"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

type TaxCategoryHandler struct {
	taxCategoryService *service.TaxCategoryService
	logger             *zap.Logger
}

func NewTaxCategoryHandler(taxCategoryService *service.TaxCategoryService, logger *zap.Logger) *TaxCategoryHandler {
	return &TaxCategoryHandler{
		taxCategoryService: taxCategoryService,
		logger:             logger,
	}
}

// Create godoc
// @Summary Create tax category
// @Tags Tax Categories
// @Accept json
// @Produce json
// @Param request body domain.TaxCategoryRequest true "Name and rate"
// @Success 200 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse "Name or rate missing"
// @Security BearerAuth
// @Router /taxcategory [post]
func (h *TaxCategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.TaxCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	category, err := h.taxCategoryService.Create(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.logger, err, "create tax category")
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Tax category created successfully",
		"id":      category.ID,
	})
}

// List godoc
// @Summary List tax categories
// @Tags Tax Categories
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.TaxCategory}
// @Security BearerAuth
// @Router /taxcategory [get]
func (h *TaxCategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.taxCategoryService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list tax categories")
		return
	}
	if categories == nil {
		categories = []domain.TaxCategory{}
	}
	respondData(w, categories)
}

// GetByID godoc
// @Summary Get tax category
// @Tags Tax Categories
// @Produce json
// @Param id path int true "Tax category ID"
// @Success 200 {object} domain.DataResponse{data=domain.TaxCategory}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /taxcategory/{id} [get]
func (h *TaxCategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	category, err := h.taxCategoryService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get tax category", zap.Int64("id", id))
		return
	}
	respondData(w, category)
}

// Delete godoc
// @Summary Delete tax category
// @Tags Tax Categories
// @Produce json
// @Param id path int true "Tax category ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /taxcategory/{id} [delete]
func (h *TaxCategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.taxCategoryService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete tax category", zap.Int64("id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Tax category deleted successfully")
}
