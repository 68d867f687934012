package http

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"tourinsights/internal/config"
	"tourinsights/internal/middleware"
)

// RouterDeps carries the dependencies the router wires together.
// Database may be nil when persistence is disabled.
type RouterDeps struct {
	ReportService ReportService
	Database      Pinger
	Version       string
	RateLimit     config.RateLimitConfig
	Logger        *slog.Logger
}

// NewRouter assembles the middleware chain and mounts all endpoints.
func NewRouter(deps RouterDeps) chi.Router {
	metrics := middleware.NewMetrics()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.StructuredLogger(deps.Logger))
	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(metrics.Handler)
	if deps.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(deps.RateLimit.RPS, deps.RateLimit.Burst, deps.Logger)
		r.Use(limiter.Handler)
	}

	reportHandler := NewReportHandler(deps.ReportService, deps.Logger)
	healthHandler := NewHealthHandler(deps.Version, deps.Database, deps.Logger)

	r.Route("/api", func(r chi.Router) {
		reportHandler.RegisterRoutes(r)
		healthHandler.RegisterRoutes(r)
	})
	r.Method("GET", "/metrics", metrics.Exporter())

	return r
}
