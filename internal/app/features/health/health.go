// Package health provides the liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gsdta/schoolapi/internal/app/system/httpx"
)

// Pinger checks the backing database. Implemented by mongo.Client.Ping via
// a small adapter in bootstrap.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler answers the health probes.
type Handler struct {
	db     Pinger
	logger *zap.Logger
}

// NewHandler creates a health handler.
func NewHandler(db Pinger, logger *zap.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// LiveHandler handles GET /health/live.
func (h *Handler) LiveHandler(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, map[string]any{"status": "ok"})
}

// ReadyHandler handles GET /health/ready: live plus a database ping.
func (h *Handler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("readiness ping failed", zap.Error(err))
		httpx.Err(w, r, http.StatusServiceUnavailable, "internal/error", "Database unavailable")
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"status": "ok"})
}

// Routes mounts the probes under /health.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/live", h.LiveHandler)
	r.Get("/ready", h.ReadyHandler)
	return r
}
