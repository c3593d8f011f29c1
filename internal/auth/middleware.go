package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/packline/jobdesk-api/internal/config"
	"github.com/packline/jobdesk-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware handles authentication for HTTP requests. When auth is disabled
// every request passes through without a user context.
type Middleware struct {
	tokens      *TokenManager
	enabled     bool
	publicPaths map[string]bool
	adminRoles  []string
	logger      *zap.Logger
}

// NewMiddleware creates a new authentication middleware
func NewMiddleware(cfg *config.AuthConfig, tokens *TokenManager, logger *zap.Logger) *Middleware {
	public := make(map[string]bool, len(cfg.PublicPaths))
	for _, p := range cfg.PublicPaths {
		public[p] = true
	}
	adminRoles := cfg.AdminRoles
	if len(adminRoles) == 0 {
		adminRoles = []string{domain.RoleAdmin}
	}
	return &Middleware{
		tokens:      tokens,
		enabled:     cfg.Enabled,
		publicPaths: public,
		adminRoles:  adminRoles,
		logger:      logger,
	}
}

// Enabled reports whether requests are verified
func (m *Middleware) Enabled() bool { return m.enabled }

// Authenticate requires a valid Bearer token on every non-public path
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled || m.publicPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized: missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			writeError(w, http.StatusUnauthorized, "Unauthorized: invalid authorization header format")
			return
		}

		userCtx, err := m.tokens.ValidateToken(parts[1])
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Error(err),
			)
			writeError(w, http.StatusUnauthorized, "Unauthorized: "+err.Error())
			return
		}

		m.logger.Debug("request authenticated",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int64("user_id", userCtx.UserID),
			zap.String("role", userCtx.Role),
			zap.Duration("auth_duration", time.Since(start)),
		)

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireRole middleware ensures user has one of the roles
func (m *Middleware) RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.enabled {
				next.ServeHTTP(w, r)
				return
			}
			userCtx, ok := FromContext(r.Context())
			if !ok {
				writeError(w, http.StatusForbidden, "Forbidden: no user context")
				return
			}
			if !userCtx.HasAnyRole(roles...) {
				writeError(w, http.StatusForbidden, "Forbidden: insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin middleware ensures user has an admin role
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireRole(m.adminRoles...)(next)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": message})
}
