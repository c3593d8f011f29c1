package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAuthConfig(enabled bool) *config.AuthConfig {
	return &config.AuthConfig{
		Enabled:     enabled,
		JWTSecret:   "test-secret",
		TokenTTL:    168,
		Issuer:      "jobdesk-api",
		AdminRoles:  []string{domain.RoleAdmin},
		PublicPaths: []string{"/api/auth/login"},
	}
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tokens := NewTokenManager(testAuthConfig(true))

	token, err := tokens.Issue(42, domain.RoleProduction)
	require.NoError(t, err)

	user, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.UserID)
	assert.Equal(t, domain.RoleProduction, user.Role)
}

func TestTokenManager_Expired(t *testing.T) {
	tokens := NewTokenManager(testAuthConfig(true))
	issued := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tokens.now = func() time.Time { return issued }

	token, err := tokens.Issue(1, domain.RoleAdmin)
	require.NoError(t, err)

	tokens.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	_, err = tokens.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, err := NewTokenManager(testAuthConfig(true)).Issue(1, domain.RoleAdmin)
	require.NoError(t, err)

	other := testAuthConfig(true)
	other.JWTSecret = "another-secret"
	_, err = NewTokenManager(other).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_NoSecret(t *testing.T) {
	cfg := testAuthConfig(true)
	cfg.JWTSecret = ""
	_, err := NewTokenManager(cfg).Issue(1, domain.RoleAdmin)
	assert.ErrorIs(t, err, ErrNoSecret)
}

func okHandler(t *testing.T, wantUser bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := FromContext(r.Context())
		assert.Equal(t, wantUser, ok)
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Authenticate(t *testing.T) {
	cfg := testAuthConfig(true)
	tokens := NewTokenManager(cfg)
	m := NewMiddleware(cfg, tokens, zap.NewNop())

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, true)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/jobs", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":false`)
	})

	t.Run("public path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, false)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := tokens.Issue(7, domain.RoleEmployee)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, true)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler(t, true)).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_Disabled(t *testing.T) {
	cfg := testAuthConfig(false)
	m := NewMiddleware(cfg, NewTokenManager(cfg), zap.NewNop())

	rec := httptest.NewRecorder()
	handler := m.Authenticate(m.RequireAdmin(okHandler(t, false)))
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	cfg := testAuthConfig(true)
	m := NewMiddleware(cfg, NewTokenManager(cfg), zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = req.WithContext(WithUserContext(req.Context(), &UserContext{UserID: 3, Role: domain.RoleEmployee}))
	rec := httptest.NewRecorder()
	m.RequireAdmin(okHandler(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = req.WithContext(WithUserContext(req.Context(), &UserContext{UserID: 1, Role: "Admin"}))
	rec = httptest.NewRecorder()
	m.RequireAdmin(okHandler(t, true)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
