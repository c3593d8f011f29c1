package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
	"github.com/packline/jobdesk-api/internal/config"
	"go.uber.org/zap"
)

func isLocalEnvironment(env string) bool {
	return env == "" || env == "development" || env == "local"
}

// CORS builds the cross-origin policy. A "*" origin, or no origins at all in
// a local environment, echoes any caller's origin so credentials still
// work. No origins outside a local environment denies every cross-origin
// request.
func CORS(cfg *config.CORSConfig, environment string, logger *zap.Logger) func(http.Handler) http.Handler {
	options := cors.Options{
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   cfg.ExposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	}

	anyOrigin := func(_ *http.Request, origin string) bool { return origin != "" }

	switch {
	case slices.Contains(cfg.AllowedOrigins, "*"):
		if !isLocalEnvironment(environment) {
			logger.Warn("CORS allows every origin outside development", zap.String("environment", environment))
		}
		options.AllowOriginFunc = anyOrigin
	case len(cfg.AllowedOrigins) > 0:
		options.AllowedOrigins = cfg.AllowedOrigins
		logger.Info("CORS origins configured", zap.Strings("origins", cfg.AllowedOrigins))
	case isLocalEnvironment(environment):
		options.AllowOriginFunc = anyOrigin
	default:
		logger.Warn("CORS has no allowed origins; cross-origin requests are denied", zap.String("environment", environment))
		// go-chi/cors reads an empty origin list as "*"
		options.AllowOriginFunc = func(*http.Request, string) bool { return false }
	}

	return cors.Handler(options)
}
