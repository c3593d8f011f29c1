package router_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/http/handler"
	"github.com/packline/jobdesk-api/internal/http/middleware"
	"github.com/packline/jobdesk-api/internal/http/router"
	"github.com/packline/jobdesk-api/internal/metrics"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, authEnabled bool, readiness ...router.ReadinessCheck) http.Handler {
	t.Helper()
	db := testutil.NewTestDB(t)
	logger := zap.NewNop()

	cfg := &config.Config{
		App:       config.AppConfig{Environment: "development"},
		Auth:      config.AuthConfig{Enabled: authEnabled, JWTSecret: "test-secret", PublicPaths: []string{"/api/auth/login"}},
		Security:  config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		RateLimit: config.RateLimitConfig{Enabled: false},
		Metrics:   config.MetricsConfig{Enabled: true, Path: "/metrics"},
	}

	tokens := auth.NewTokenManager(&cfg.Auth)
	catalogs := service.NewCatalogService(repository.NewCatalogRepository(db), logger)
	audit := service.NewAuditLogService(repository.NewAuditLogRepository(db), logger)
	handlers := router.Handlers{
		Auth:     handler.NewAuthHandler(service.NewUserService(repository.NewUserRepository(db), tokens, nil, 0, logger), logger),
		Audit:    handler.NewAuditHandler(audit, logger),
		Catalogs: map[string]*handler.CatalogHandler{},
	}
	for segment, kind := range router.CatalogRoutes {
		handlers.Catalogs[segment] = handler.NewCatalogHandler(catalogs, kind, logger)
	}

	rt := router.NewRouter(
		cfg,
		logger,
		db,
		auth.NewMiddleware(&cfg.Auth, tokens, logger),
		middleware.NewRateLimiter(&cfg.RateLimit, logger),
		middleware.NewAuditMiddleware(audit, nil, logger),
		metrics.New(prometheus.NewRegistry()),
		handlers,
		readiness...,
	)
	return rt.Setup()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRouter_Health(t *testing.T) {
	h := newTestRouter(t, false)

	w := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	w = get(t, h, "/health/db")
	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Contains(t, body, "stats")
}

func TestRouter_Readiness(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		h := newTestRouter(t, false, router.ReadinessCheck{Name: "redis", Check: func(context.Context) error { return nil }})
		w := get(t, h, "/health/ready")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("failing dependency", func(t *testing.T) {
		h := newTestRouter(t, false, router.ReadinessCheck{Name: "redis", Check: func(context.Context) error { return errors.New("connection refused") }})
		w := get(t, h, "/health/ready")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var body struct {
			Status string                       `json:"status"`
			Checks map[string]map[string]string `json:"checks"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "healthy", body.Checks["database"]["status"])
		assert.Equal(t, "connection refused", body.Checks["redis"]["error"])
	})
}

func TestRouter_Metrics(t *testing.T) {
	h := newTestRouter(t, false)
	get(t, h, "/health")

	w := get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jobdesk_http_requests_total")
}

func TestRouter_Catalogs(t *testing.T) {
	h := newTestRouter(t, false)

	for segment := range router.CatalogRoutes {
		w := get(t, h, "/api/"+segment)
		assert.Equal(t, http.StatusOK, w.Code, segment)
		assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String(), segment)
	}
}

func TestRouter_Authentication(t *testing.T) {
	h := newTestRouter(t, true)

	w := get(t, h, "/api/brand")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	t.Run("login stays public", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bearer token", func(t *testing.T) {
		token, err := auth.NewTokenManager(&config.AuthConfig{JWTSecret: "test-secret"}).Issue(1, domain.RoleEmployee)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/brand", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRouter_AuditTrail(t *testing.T) {
	h := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/flavours", strings.NewReader(`{"name":"Mango"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/flavours", strings.NewReader(`{"name":""}`))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = get(t, h, "/api/audit-logs?entityType=Flavour")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Total int64             `json:"total"`
		Data  []domain.AuditLog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.Total)
	assert.Equal(t, domain.AuditActionCreate, body.Data[0].Action)
	assert.Equal(t, "/api/flavours", body.Data[0].Path)
	assert.JSONEq(t, `{"name":"Mango"}`, body.Data[0].Payload)

	t.Run("bad filter", func(t *testing.T) {
		w := get(t, h, "/api/audit-logs?action=read")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
