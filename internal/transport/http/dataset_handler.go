package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "thrive/internal/errors"
	"thrive/internal/infrastructure"
	"thrive/internal/store"
)

// reloadTimeout bounds a background rebuild kicked off over HTTP.
const reloadTimeout = 10 * time.Minute

// DatasetHandler serves dataset lifecycle endpoints: status, merge
// statistics, and reload triggering.
type DatasetHandler struct {
	service      DataService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDatasetHandler creates a new dataset lifecycle handler
func NewDatasetHandler(service DataService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset lifecycle routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/status", h.GetStatus)
	r.Get("/stats", h.GetStats)
	r.Post("/reload", h.Reload)

	return r
}

// GetStatus handles GET /api/dataset/status
func (h *DatasetHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status := h.service.GetStatus()

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// GetStats handles GET /api/dataset/stats
func (h *DatasetHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats()
	if err != nil {
		if errors.Is(err, store.ErrNotLoaded) {
			h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotLoaded)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}

// Reload handles POST /api/dataset/reload. The rebuild runs in the
// background; the endpoint answers immediately with 202 Accepted.
// Concurrent reload requests are coalesced by the store.
func (h *DatasetHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())

	h.logger.InfoContext(r.Context(), "dataset reload requested",
		slog.String("request_id", reqID),
		slog.String("remote_addr", r.RemoteAddr),
	)

	// Detach from the request context so the rebuild survives the
	// client disconnecting, but keep the trace id for log correlation.
	ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
	ctx = infrastructure.WithTraceID(ctx, reqID)

	go func() {
		defer cancel()
		if err := h.service.Load(ctx); err != nil {
			h.logger.ErrorContext(ctx, "background reload failed",
				slog.String("error", err.Error()))
			return
		}
		status := h.service.GetStatus()
		h.logger.InfoContext(ctx, "background reload finished",
			slog.String("dataset", describeStats(status.RowCount, status.RegularCount)))
	}()

	render.Status(r, http.StatusAccepted)
	render.JSON(w, r, map[string]interface{}{
		"status":  "accepted",
		"message": "Dataset reload started",
	})
}
