package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"thrive/internal/config"
)

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	service DataService
	logger  *slog.Logger
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(service DataService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		service: service,
		logger:  logger.With(slog.String("handler", "health")),
		started: time.Now(),
	}
}

// HealthCheck handles GET /api/health. Liveness only: the process is
// up and answering.
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status":  "ok",
		"app":     config.AppName,
		"version": config.AppVersion,
		"uptime":  time.Since(h.started).Round(time.Second).String(),
	})
}

// ReadinessCheck handles GET /api/health/ready. Ready means a dataset
// snapshot has been published; until then queries would return 503.
func (h *HealthHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := h.service.GetStatus()

	if !status.Loaded {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]interface{}{
			"status":  "not_ready",
			"loading": status.Loading,
		})
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":    "ready",
		"loaded_at": status.LoadedAt,
		"row_count": status.RowCount,
	})
}
