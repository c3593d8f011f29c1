package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/packline/jobdesk-api/internal/auth"
	"github.com/packline/jobdesk-api/internal/config"
	"go.uber.org/zap"
)

// RateLimiter throttles requests per minute. Anonymous callers are keyed by
// client IP, authenticated callers by user id. Whitelisted IPs and paths are
// never throttled.
type RateLimiter struct {
	enabled  bool
	logger   *zap.Logger
	byIP     func(http.Handler) http.Handler
	byUser   func(http.Handler) http.Handler
	ips      map[string]struct{}
	paths    map[string]struct{}
	prefixes []string
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(cfg *config.RateLimitConfig, logger *zap.Logger) *RateLimiter {
	rl := &RateLimiter{
		enabled: cfg.Enabled,
		logger:  logger,
		ips:     make(map[string]struct{}, len(cfg.WhitelistIPs)),
		paths:   make(map[string]struct{}, len(cfg.WhitelistPaths)),
	}
	for _, ip := range cfg.WhitelistIPs {
		rl.ips[ip] = struct{}{}
	}
	// "/swagger/*" whitelists everything below /swagger/
	for _, p := range cfg.WhitelistPaths {
		if prefix, ok := strings.CutSuffix(p, "*"); ok {
			rl.prefixes = append(rl.prefixes, prefix)
			continue
		}
		rl.paths[p] = struct{}{}
	}

	rl.byIP = httprate.Limit(cfg.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) { return "ip:" + clientIP(r), nil }),
		httprate.WithLimitHandler(rl.tooManyRequests),
	)
	rl.byUser = httprate.Limit(cfg.RequestsPerMinuteAuth, time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if user, ok := auth.FromContext(r.Context()); ok && user != nil {
				return "user:" + strconv.FormatInt(user.UserID, 10), nil
			}
			return "ip:" + clientIP(r), nil
		}),
		httprate.WithLimitHandler(rl.tooManyRequests),
	)

	if cfg.Enabled {
		logger.Info("rate limiter initialized",
			zap.Int("requests_per_minute", cfg.RequestsPerMinute),
			zap.Int("requests_per_minute_auth", cfg.RequestsPerMinuteAuth),
			zap.Strings("whitelist_ips", cfg.WhitelistIPs),
			zap.Strings("whitelist_paths", cfg.WhitelistPaths),
		)
	}
	return rl
}

// LimitByIP keys every request by client IP. It runs before authentication.
func (rl *RateLimiter) LimitByIP(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	limited := rl.byIP(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if rl.exempt(r) {
			next.ServeHTTP(w, r)
			return
		}
		limited.ServeHTTP(w, r)
	})
}

// Limit uses the per-user budget once a user is on the context and the IP
// budget otherwise
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	if !rl.enabled {
		return next
	}
	anonymous, authenticated := rl.byIP(next), rl.byUser(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch user, ok := auth.FromContext(r.Context()); {
		case rl.exempt(r):
			next.ServeHTTP(w, r)
		case ok && user != nil:
			authenticated.ServeHTTP(w, r)
		default:
			anonymous.ServeHTTP(w, r)
		}
	})
}

func (rl *RateLimiter) exempt(r *http.Request) bool {
	if _, ok := rl.paths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range rl.prefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	_, ok := rl.ips[clientIP(r)]
	return ok
}

// clientIP prefers the proxy headers over RemoteAddr
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (rl *RateLimiter) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.String("client_ip", clientIP(r)),
	}
	if user, ok := auth.FromContext(r.Context()); ok && user != nil {
		fields = append(fields, zap.Int64("user_id", user.UserID))
	}
	rl.logger.Warn("rate limit exceeded", fields...)

	w.Header().Set("Retry-After", "60")
	respondError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
}
