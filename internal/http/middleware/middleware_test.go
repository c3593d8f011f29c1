package middleware_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/packline/jobdesk-api/internal/http/middleware"
	"github.com/packline/jobdesk-api/internal/metrics"
	"github.com/packline/jobdesk-api/internal/repository"
	"github.com/packline/jobdesk-api/internal/service"
	"github.com/packline/jobdesk-api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func createTestRateLimiter(cfg *config.RateLimitConfig) *middleware.RateLimiter {
	return middleware.NewRateLimiter(cfg, zap.NewNop())
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{Enabled: false, RequestsPerMinute: 5})
	handler := rl.LimitByIP(okHandler)

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_LimitExceeded(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 3, RequestsPerMinuteAuth: 3})
	handler := rl.LimitByIP(okHandler)

	codes := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "10.0.0.1:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)

		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, "60", w.Header().Get("Retry-After"))
			assert.JSONEq(t, `{"success":false,"message":"Too many requests. Please try again later."}`, w.Body.String())
		}
	}
	assert.Equal(t, []int{200, 200, 200, 429, 429}, codes)

	t.Run("other clients keep their own budget", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "10.0.0.2:1000"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRateLimiter_Whitelists(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"127.0.0.1"},
		WhitelistPaths:    []string{"/health", "/swagger/*"},
	})
	handler := rl.LimitByIP(okHandler)

	cases := []struct {
		name   string
		path   string
		remote string
	}{
		{"whitelisted ip", "/api/jobs", "127.0.0.1:5000"},
		{"exact path", "/health", "10.1.1.1:5000"},
		{"path prefix", "/swagger/index.html", "10.1.1.2:5000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 5; i++ {
				req := httptest.NewRequest(http.MethodGet, tc.path, nil)
				req.RemoteAddr = tc.remote
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)
				assert.Equal(t, http.StatusOK, w.Code)
			}
		})
	}
}

func TestRateLimiter_ForwardedHeadersWhitelist(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{
		Enabled:           true,
		RequestsPerMinute: 1,
		WhitelistIPs:      []string{"10.0.0.1", "10.0.0.2"},
	})
	handler := rl.LimitByIP(okHandler)

	send := func(header, value string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		req.Header.Set(header, value)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, send("X-Forwarded-For", "10.0.0.1, 172.16.0.1"))
		assert.Equal(t, http.StatusOK, send("X-Real-IP", "10.0.0.2"))
	}
}

func TestRateLimiter_ProxiedClientsKeyedByForwardedIP(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1})
	handler := rl.LimitByIP(okHandler)

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "10.9.9.9:443"
		req.Header.Set("X-Forwarded-For", forwarded)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1, 10.9.9.9"))
}

func TestRateLimiter_AuthenticatedUsersAreKeyedByID(t *testing.T) {
	rl := createTestRateLimiter(&config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1, RequestsPerMinuteAuth: 2})
	handler := rl.Limit(okHandler)

	send := func(userID int64) int {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.RemoteAddr = "10.2.2.2:1"
		req = req.WithContext(auth.WithUserContext(context.Background(), &auth.UserContext{UserID: userID, Role: "employee"}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send(1))
	assert.Equal(t, http.StatusOK, send(1))
	assert.Equal(t, http.StatusTooManyRequests, send(1))
	assert.Equal(t, http.StatusOK, send(2))
}

func TestCORS(t *testing.T) {
	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "GET")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		return w
	}
	base := config.CORSConfig{
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}

	t.Run("development allows any origin", func(t *testing.T) {
		cfg := base
		h := middleware.CORS(&cfg, "development", zap.NewNop())(okHandler)
		assert.Equal(t, "http://localhost:3000", preflight(h, "http://localhost:3000").Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("explicit origins", func(t *testing.T) {
		cfg := base
		cfg.AllowedOrigins = []string{"https://jobs.example.com"}
		h := middleware.CORS(&cfg, "production", zap.NewNop())(okHandler)
		assert.Equal(t, "https://jobs.example.com", preflight(h, "https://jobs.example.com").Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, preflight(h, "https://evil.example.com").Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("production without origins denies all", func(t *testing.T) {
		cfg := base
		h := middleware.CORS(&cfg, "production", zap.NewNop())(okHandler)
		assert.Empty(t, preflight(h, "https://jobs.example.com").Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard echoes the origin", func(t *testing.T) {
		cfg := base
		cfg.AllowedOrigins = []string{"*"}
		h := middleware.CORS(&cfg, "staging", zap.NewNop())(okHandler)
		assert.Equal(t, "https://any.example.com", preflight(h, "https://any.example.com").Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestSecurityHeaders(t *testing.T) {
	cfg := &config.SecurityConfig{
		EnableHSTS:            true,
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		FrameOptions:          "DENY",
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}
	handler := middleware.SecurityHeaders(cfg)(okHandler)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "default-src 'self'", w.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", w.Header().Get("Referrer-Policy"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))

	t.Run("swagger skips the content security policy", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
		assert.Empty(t, w.Header().Get("Content-Security-Policy"))
		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	})

	t.Run("empty config sets nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		middleware.SecurityHeaders(&config.SecurityConfig{})(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Empty(t, w.Header().Get("X-Frame-Options"))
		assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
	})
}

func TestRequestID(t *testing.T) {
	var seen string
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-ID")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecoverer(t *testing.T) {
	handler := middleware.Recoverer(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	require.NotPanics(t, func() {
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"message":"Server Error"}`, w.Body.String())
}

func TestLoggingAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	r := chi.NewRouter()
	r.Use(middleware.Logging(zap.NewNop()))
	r.Use(middleware.Metrics(m))
	r.Get("/api/jobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/api/jobs/1", "/api/jobs/2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, w.Code)
	}

	expected := `
# HELP jobdesk_http_requests_total Total number of HTTP requests by route, method and status.
# TYPE jobdesk_http_requests_total counter
jobdesk_http_requests_total{method="GET",route="/api/jobs/{id}",status="418"} 2
`
	require.NoError(t, promtest.GatherAndCompare(reg, strings.NewReader(expected), "jobdesk_http_requests_total"))

	t.Run("nil metrics passes through", func(t *testing.T) {
		w := httptest.NewRecorder()
		middleware.Metrics(nil)(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuditMiddleware(t *testing.T) {
	db := testutil.NewTestDB(t)
	audit := middleware.NewAuditMiddleware(service.NewAuditLogService(repository.NewAuditLogRepository(db), zap.NewNop()), nil, zap.NewNop())

	var echoed string
	r := chi.NewRouter()
	r.Use(audit.Audit)
	r.Put("/api/invoices/{id}", func(w http.ResponseWriter, r *http.Request) {
		b := new(strings.Builder)
		_, _ = io.Copy(b, r.Body)
		echoed = b.String()
		w.WriteHeader(http.StatusOK)
	})
	r.Delete("/api/assignjobs/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/api/invoices", okHandler)
	r.Post("/api/auth/login", okHandler)

	send := func(method, path, body string) {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("X-Request-ID", "req-"+method)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	send(http.MethodPut, "/api/invoices/12", `{"currency":"USD","token":"x"}`)
	send(http.MethodDelete, "/api/assignjobs/3", "")
	send(http.MethodGet, "/api/invoices", "")
	send(http.MethodPost, "/api/auth/login", `{"password":"x"}`)

	assert.Equal(t, `{"currency":"USD","token":"x"}`, echoed, "the handler still reads the full body")

	var rows []domain.AuditLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1, "only successful writes outside the skip list are recorded")

	row := rows[0]
	assert.Equal(t, domain.AuditActionUpdate, row.Action)
	assert.Equal(t, "Invoice", row.EntityType)
	require.NotNil(t, row.EntityID)
	assert.Equal(t, int64(12), *row.EntityID)
	assert.Equal(t, "req-PUT", row.RequestID)
	assert.JSONEq(t, `{"currency":"USD"}`, row.Payload)

	t.Run("nil middleware passes through", func(t *testing.T) {
		var m *middleware.AuditMiddleware
		w := httptest.NewRecorder()
		m.Audit(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/jobs", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
