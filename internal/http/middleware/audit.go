package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/service"
	"go.uber.org/zap"
)

// AuditConfig holds configuration for audit middleware
type AuditConfig struct {
	// SkipPaths are path prefixes that are never audited
	SkipPaths []string
	// MaxBodyBytes caps how much of a request body is buffered for the record
	MaxBodyBytes int64
}

// DefaultAuditConfig returns default audit configuration
func DefaultAuditConfig() *AuditConfig {
	return &AuditConfig{
		SkipPaths:    []string{"/api/auth/login"},
		MaxBodyBytes: 64 << 10,
	}
}

// entityTypes maps route segments to the entity an audit row names
var entityTypes = map[string]string{
	"users":           "User",
	"projects":        "Project",
	"jobs":            "Job",
	"assignjobs":      "AssignJob",
	"costestimates":   "Estimate",
	"invoices":        "Invoice",
	"purchaseorders":  "PurchaseOrder",
	"time-logs":       "TimeLog",
	"clientsuppliers": "ClientSupplier",
	"company":         "CompanyInformation",
	"taxcategory":     "TaxCategory",
	"brand":           "Brand",
	"subbrands":       "SubBrand",
	"flavours":        "Flavour",
	"packtypes":       "PackType",
	"packcodes":       "PackCode",
	"industries":      "Industry",
}

// idParams are the route parameters that name the affected row, in order
// of preference
var idParams = []string{"id", "assign_job_id"}

// AuditMiddleware records successful mutating requests to the audit trail
type AuditMiddleware struct {
	auditService *service.AuditLogService
	config       *AuditConfig
	logger       *zap.Logger
}

// NewAuditMiddleware creates a new audit middleware
func NewAuditMiddleware(auditService *service.AuditLogService, config *AuditConfig, logger *zap.Logger) *AuditMiddleware {
	if config == nil {
		config = DefaultAuditConfig()
	}
	return &AuditMiddleware{
		auditService: auditService,
		config:       config,
		logger:       logger,
	}
}

// Audit records POST, PUT, PATCH and DELETE requests that end in a 2xx.
// It must run inside the chi router so the route pattern is known. A nil
// middleware passes every request through.
func (m *AuditMiddleware) Audit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := methodToAction(r.Method)
		if m == nil || m.auditService == nil || action == "" || m.skipped(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		var body []byte
		if r.Body != nil && !isMultipart(r) {
			body, _ = io.ReadAll(io.LimitReader(r.Body, m.config.MaxBodyBytes))
			r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), r.Body))
		}

		rw := wrap(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode < 200 || rw.statusCode >= 300 {
			return
		}

		entityType, entityID := extractEntityInfo(r)
		err := m.auditService.Log(r.Context(), service.LogEntry{
			Action:     action,
			EntityType: entityType,
			EntityID:   entityID,
			Method:     r.Method,
			Path:       r.URL.Path,
			StatusCode: rw.statusCode,
			Body:       body,
			IPAddress:  clientIP(r),
			UserAgent:  r.UserAgent(),
			RequestID:  r.Header.Get(requestIDHeader),
		})
		if err != nil {
			m.logger.Warn("failed to create audit log entry",
				zap.String("path", r.URL.Path),
				zap.String("method", r.Method),
				zap.Error(err))
		}
	})
}

func (m *AuditMiddleware) skipped(path string) bool {
	for _, p := range m.config.SkipPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func methodToAction(method string) domain.AuditAction {
	switch method {
	case http.MethodPost:
		return domain.AuditActionCreate
	case http.MethodPut, http.MethodPatch:
		return domain.AuditActionUpdate
	case http.MethodDelete:
		return domain.AuditActionDelete
	default:
		return ""
	}
}

// extractEntityInfo names the entity from the matched route pattern and
// its id from the first numeric id parameter
func extractEntityInfo(r *http.Request) (string, *int64) {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		return parseEntityFromPath(r.URL.Path), nil
	}

	var entityID *int64
	for _, name := range idParams {
		if raw := routeCtx.URLParam(name); raw != "" {
			if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
				entityID = &id
				break
			}
		}
	}

	pattern := routeCtx.RoutePattern()
	if pattern == "" {
		pattern = r.URL.Path
	}
	return parseEntityFromPath(pattern), entityID
}

func parseEntityFromPath(path string) string {
	for _, part := range strings.Split(strings.Trim(path, "/"), "/") {
		if entityType, ok := entityTypes[part]; ok {
			return entityType
		}
	}
	return "Unknown"
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/")
}
