package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"coliseumAPI/internal/types/buddy"
	"coliseumAPI/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type BuddyHandler struct {
	buddyService *services.BuddyService
	log          *zap.SugaredLogger
}

func NewBuddyHandler(buddyService *services.BuddyService, log *zap.SugaredLogger) *BuddyHandler {
	return &BuddyHandler{buddyService: buddyService, log: log}
}

// POST /api/v1/buddies/requests
func (h *BuddyHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req buddy.SendRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.buddyService.SendRequest(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to send buddy request")
		return
	}
	respondWithJSON(w, http.StatusCreated, created)
}

// POST /api/v1/buddies/requests/{id}/respond
func (h *BuddyHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req buddy.RespondRequest
	if !decodeBody(w, r, &req) {
		return
	}

	answered, err := h.buddyService.Respond(ctx, clerkID, mux.Vars(r)["id"], req.Accept)
	if errors.Is(err, services.ErrRequestNotPending) {
		respondWithJSON(w, http.StatusConflict, map[string]any{
			"error":   err.Error(),
			"request": answered,
		})
		return
	}
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to respond to buddy request")
		return
	}
	respondWithJSON(w, http.StatusOK, answered)
}

// GET /api/v1/buddies
func (h *BuddyHandler) GetLists(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	lists, err := h.buddyService.LoadLists(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to load buddies")
		return
	}
	respondWithJSON(w, http.StatusOK, lists)
}

// GET /api/v1/buddies/confirmed
func (h *BuddyHandler) GetConfirmed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	confirmed, err := h.buddyService.ListConfirmed(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to load buddies")
		return
	}
	respondWithJSON(w, http.StatusOK, confirmed)
}

// GET /api/v1/buddies/pending
func (h *BuddyHandler) GetPending(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.buddyService.ListPending)
}

// GET /api/v1/buddies/incoming
func (h *BuddyHandler) GetIncoming(w http.ResponseWriter, r *http.Request) {
	h.listRequests(w, r, h.buddyService.ListIncoming)
}

func (h *BuddyHandler) listRequests(w http.ResponseWriter, r *http.Request, list func(context.Context, string) ([]buddy.Request, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	requests, err := list(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to load buddy requests")
		return
	}
	respondWithJSON(w, http.StatusOK, requests)
}

// POST /api/v1/buddies/{id}/encourage
func (h *BuddyHandler) Encourage(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req buddy.EncourageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.buddyService.Encourage(ctx, clerkID, mux.Vars(r)["id"], req.Message); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to send encouragement")
		return
	}
	respondWithJSON(w, http.StatusAccepted, map[string]string{"message": "Encouragement sent"})
}
