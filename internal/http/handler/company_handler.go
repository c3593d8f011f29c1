package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// CompanyHandler serves the company information and the admin landing page
type CompanyHandler struct {
	companyService *service.CompanyService
	maxUploadMB    int64
	logger         *zap.Logger
}

func NewCompanyHandler(companyService *service.CompanyService, maxUploadMB int64, logger *zap.Logger) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		maxUploadMB:    maxUploadMB,
		logger:         logger,
	}
}

// readRequest decodes company information from JSON or from a multipart
// form with optional company_logo and company_stamp files
func (h *CompanyHandler) readRequest(w http.ResponseWriter, r *http.Request) (*domain.CompanyRequest, service.CompanyImages, bool) {
	var req domain.CompanyRequest
	var images service.CompanyImages
	if !isMultipart(r) {
		if !decodeJSON(w, r, &req) {
			return nil, images, false
		}
		return &req, images, true
	}

	if !parseMultipart(w, r, h.maxUploadMB) {
		return nil, images, false
	}
	req = domain.CompanyRequest{
		CompanyName:     r.FormValue("company_name"),
		Address:         r.FormValue("address"),
		TRN:             r.FormValue("trn"),
		Email:           r.FormValue("email"),
		Phone:           r.FormValue("phone"),
		BankAccountName: r.FormValue("bank_account_name"),
		BankName:        r.FormValue("bank_name"),
		IBAN:            r.FormValue("iban"),
		SwiftCode:       r.FormValue("swift_code"),
	}
	if raw := strings.TrimSpace(r.FormValue("tax_categories")); raw != "" {
		if !json.Valid([]byte(raw)) {
			respondWithError(w, http.StatusBadRequest, "tax_categories must be valid JSON")
			return nil, images, false
		}
		req.TaxCategories = domain.RawJSON(raw)
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return nil, images, false
	}

	var err error
	if images.Logo, err = formFile(r, "company_logo"); err == nil {
		images.Stamp, err = formFile(r, "company_stamp")
	}
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload")
		return nil, images, false
	}
	return &req, images, true
}

// Create godoc
// @Summary Create company information
// @Tags Company
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body domain.CompanyRequest true "Company data"
// @Success 200 {object} domain.CreatedResponse
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /company [post]
func (h *CompanyHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, images, ok := h.readRequest(w, r)
	if !ok {
		return
	}
	company, err := h.companyService.Create(r.Context(), req, images)
	if err != nil {
		handleServiceError(w, h.logger, err, "create company information")
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success": true,
		"message": "Company information created successfully",
		"id":      company.ID,
	})
}

// List godoc
// @Summary List company information records
// @Tags Company
// @Produce json
// @Success 200 {object} domain.DataResponse{data=[]domain.CompanyInformation}
// @Security BearerAuth
// @Router /company [get]
func (h *CompanyHandler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.companyService.List(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "list company information")
		return
	}
	if companies == nil {
		companies = []domain.CompanyInformation{}
	}
	respondData(w, companies)
}

// GetByID godoc
// @Summary Get company information
// @Tags Company
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} domain.DataResponse{data=domain.CompanyInformation}
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /company/{id} [get]
func (h *CompanyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	company, err := h.companyService.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, h.logger, err, "get company information", zap.Int64("company_id", id))
		return
	}
	respondData(w, company)
}

// Update godoc
// @Summary Update company information
// @Description Logo and stamp are replaced only when new files are uploaded
// @Tags Company
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Company ID"
// @Param request body domain.CompanyRequest true "Company data"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /company/{id} [put]
func (h *CompanyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	req, images, ok := h.readRequest(w, r)
	if !ok {
		return
	}
	if _, err := h.companyService.Update(r.Context(), id, req, images); err != nil {
		handleServiceError(w, h.logger, err, "update company information", zap.Int64("company_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Company information updated")
}

// Delete godoc
// @Summary Delete company information
// @Tags Company
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} domain.MessageResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /company/{id} [delete]
func (h *CompanyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.companyService.Delete(r.Context(), id); err != nil {
		handleServiceError(w, h.logger, err, "delete company information", zap.Int64("company_id", id))
		return
	}
	respondMessage(w, http.StatusOK, "Company deleted successfully")
}

// AdminDashboard godoc
// @Summary Admin landing page
// @Description Headline counters, the project status chart and the newest projects
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DataResponse{data=domain.AdminDashboard}
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /admindashboard [get]
func (h *CompanyHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.companyService.AdminDashboard(r.Context())
	if err != nil {
		handleServiceError(w, h.logger, err, "load admin dashboard")
		return
	}
	respondData(w, dashboard)
}
