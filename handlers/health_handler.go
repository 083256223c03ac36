package handlers

import (
	"context"
	"net/http"
	"time"

	"coliseumAPI/internal/docstore"

	"go.uber.org/zap"
)

type HealthHandler struct {
	store docstore.Store
	log   *zap.SugaredLogger
}

func NewHealthHandler(store docstore.Store, log *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

// GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warnw("Health check failed", "error", err)
		respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
