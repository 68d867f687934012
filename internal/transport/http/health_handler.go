package http

import (
	"context"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthStatus is the health check response
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	GoVersion string            `json:"go_version"`
	Services  map[string]string `json:"services,omitempty"`
}

// HealthHandler answers liveness probes and reports dependency health
type HealthHandler struct {
	version   string
	startTime time.Time
	database  Pinger
	logger    *slog.Logger
}

// NewHealthHandler creates a health handler. database may be nil when
// persistence is disabled.
func NewHealthHandler(version string, database Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
		database:  database,
		logger:    logger,
	}
}

// RegisterRoutes registers the health route
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.Check)
}

// Check reports overall service health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		GoVersion: runtime.Version(),
		Services:  map[string]string{},
	}

	if h.database != nil {
		if err := h.database.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "database health check failed",
				slog.String("error", err.Error()))
			status.Status = "degraded"
			status.Services["database"] = "unreachable"
		} else {
			status.Services["database"] = "healthy"
		}
	} else {
		status.Services["database"] = "disabled"
	}

	if status.Status != "healthy" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, status)
}
