// Package api wires the daemon's HTTP surface: five endpoints behind a
// middleware stack built from a gorilla/mux router, with global
// middleware applied via router.Use and route-specific middleware
// chained per subrouter. There is no authentication surface, so routes
// sit in a single flat table rather than being split across versioned
// or auth-gated subrouters.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/CaoDuyThanh/drtrace/internal/api/handlers"
	"github.com/CaoDuyThanh/drtrace/internal/api/middleware"
	"github.com/CaoDuyThanh/drtrace/internal/cache"
	"github.com/CaoDuyThanh/drtrace/internal/config"
	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// RouterConfig holds router construction dependencies and middleware
// toggles.
type RouterConfig struct {
	Store   core.LogStore
	Cache   *cache.Manager
	Config  *config.Config
	Metrics *metrics.Registry
	Logger  *slog.Logger
	Version string

	EnableRateLimit   bool
	EnableCompression bool
	EnableCORS        bool
	EnableMetrics     bool
	CORSConfig        middleware.CORSConfig
}

// DefaultRouterConfig returns sensible middleware toggles for production use.
func DefaultRouterConfig(logger *slog.Logger) RouterConfig {
	return RouterConfig{
		Logger:            logger,
		EnableRateLimit:   true,
		EnableCompression: true,
		EnableCORS:        true,
		EnableMetrics:     true,
		CORSConfig:        middleware.DefaultCORSConfig(),
	}
}

// NewRouter builds the daemon's HTTP router.
//
// The middleware stack is applied in order:
//  1. RequestID (always)
//  2. Logging (always)
//  3. Metrics (if enabled)
//  4. CORS (if enabled)
//  5. Compression (if enabled)
//  6. RateLimit, scoped to /logs/ingest, /logs/query, and /logs/clear
//     only (if enabled) — /status and /openapi.json are never limited
func NewRouter(cfg RouterConfig) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.LoggingMiddleware(cfg.Logger))

	if cfg.EnableMetrics && cfg.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(cfg.Metrics))
	}
	if cfg.EnableCORS {
		router.Use(middleware.CORSMiddleware(cfg.CORSConfig))
	}
	if cfg.EnableCompression {
		router.Use(middleware.CompressionMiddleware)
	}

	ingestHandler := handlers.NewIngestHandler(cfg.Store, cfg.Cache, cfg.Metrics, cfg.Logger)
	queryHandler := handlers.NewQueryHandler(cfg.Store, cfg.Cache, cfg.Metrics, cfg.Logger)
	clearHandler := handlers.NewClearHandler(cfg.Store, cfg.Cache, cfg.Logger)
	statusHandler := handlers.NewStatusHandler(cfg.Config, cfg.Store, cfg.Version)
	openapiHandler := handlers.NewOpenAPIHandler(cfg.Version)

	router.Handle("/status", statusHandler).Methods(http.MethodGet)
	router.Handle("/openapi.json", openapiHandler).Methods(http.MethodGet)

	ingest := router.PathPrefix("").Subrouter()
	ingest.Handle("/logs/ingest", ingestHandler).Methods(http.MethodPost)

	query := router.PathPrefix("").Subrouter()
	query.Handle("/logs/query", queryHandler).Methods(http.MethodGet)

	clear := router.PathPrefix("").Subrouter()
	clear.Handle("/logs/clear", clearHandler).Methods(http.MethodPost)

	if cfg.EnableRateLimit && cfg.Config != nil && cfg.Config.RateLimit.Enabled {
		rl := middleware.RateLimitMiddleware(cfg.Config.RateLimit.RequestsPerMinute, cfg.Config.RateLimit.Burst, cfg.Metrics)
		ingest.Use(rl)
		query.Use(rl)
		clear.Use(rl)
	}

	return router
}
