package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// AuditHandler serves the audit trail to admins
type AuditHandler struct {
	auditService *service.AuditLogService
	logger       *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditLogService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// List godoc
// @Summary List audit logs
// @Description Returns a page of recorded create, update and delete calls, newest first
// @Tags Audit
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param pageSize query int false "Page size (default: 20, max: 100)"
// @Param userId query int false "Filter by user ID"
// @Param action query string false "Filter by action (create, update, delete)"
// @Param entityType query string false "Filter by entity type, e.g. Invoice"
// @Param entityId query int false "Filter by entity ID"
// @Param startTime query string false "Filter by start time (RFC3339)"
// @Param endTime query string false "Filter by end time (RFC3339)"
// @Success 200 {object} domain.AuditLogPage
// @Failure 400 {object} domain.ErrorResponse
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Router /audit-logs [get]
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := service.AuditLogQuery{
		Page:     parseIntQuery(r, "page", 1),
		PageSize: parseIntQuery(r, "pageSize", 20),
	}
	query.EntityType = q.Get("entityType")
	query.RequestID = q.Get("requestId")

	if action := q.Get("action"); action != "" {
		a := domain.AuditAction(action)
		switch a {
		case domain.AuditActionCreate, domain.AuditActionUpdate, domain.AuditActionDelete:
			query.Action = &a
		default:
			respondWithError(w, http.StatusBadRequest, "Invalid action")
			return
		}
	}

	for name, dst := range map[string]**int64{"userId": &query.UserID, "entityId": &query.EntityID} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid "+name)
			return
		}
		*dst = &id
	}

	for name, dst := range map[string]**time.Time{"startTime": &query.StartTime, "endTime": &query.EndTime} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid "+name)
			return
		}
		*dst = &ts
	}

	page, err := h.auditService.List(r.Context(), query)
	if err != nil {
		handleServiceError(w, h.logger, err, "list audit logs")
		return
	}
	respondJSON(w, http.StatusOK, envelope{
		"success":     true,
		"data":        page.Data,
		"total":       page.Total,
		"page":        page.Page,
		"page_size":   page.PageSize,
		"total_pages": page.TotalPages,
	})
}

// parseIntQuery reads a positive integer query parameter, falling back to def
func parseIntQuery(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v < 1 {
		return def
	}
	return v
}
