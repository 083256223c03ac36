package handlers

import (
	"context"
	"net/http"
	"time"

	"coliseumAPI/internal/types/video"
	"coliseumAPI/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type ColiseumHandler struct {
	thumbnailService *services.ThumbnailService
	log              *zap.SugaredLogger
}

func NewColiseumHandler(thumbnailService *services.ThumbnailService, log *zap.SugaredLogger) *ColiseumHandler {
	return &ColiseumHandler{thumbnailService: thumbnailService, log: log}
}

// GET /api/v1/coliseum/{id}/thumbnail
func (h *ColiseumHandler) GetThumbnail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := mux.Vars(r)["id"]
	url, err := h.thumbnailService.Thumbnail(ctx, id)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get thumbnail")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"id": id, "thumbnailUrl": url})
}

// POST /api/v1/coliseum/thumbnails/enhance
func (h *ColiseumHandler) EnhanceThumbnails(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}
	h.log.Infow("Thumbnail pass requested", "user", clerkID)

	result, err := h.thumbnailService.EnhancePending(ctx, func(p video.Progress) {
		h.log.Debugw("Thumbnail progress", "current", p.Current, "total", p.Total)
	})
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to enhance thumbnails")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}

// DELETE /api/v1/coliseum/thumbnails/cache
func (h *ColiseumHandler) ClearThumbnailCache(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireClerkID(w, r); !ok {
		return
	}
	cleared := h.thumbnailService.ClearCache()
	respondWithJSON(w, http.StatusOK, map[string]int{"cleared": cleared})
}
