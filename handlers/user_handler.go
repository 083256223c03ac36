package handlers

import (
	"context"
	"net/http"
	"time"

	"coliseumAPI/internal/user"
	"coliseumAPI/services"

	"go.uber.org/zap"
)

type UserHandler struct {
	userService *services.UserService
	log         *zap.SugaredLogger
}

func NewUserHandler(userService *services.UserService, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

// GET /api/v1/user
func (h *UserHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	u, err := h.userService.GetUser(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get user")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

// PUT /api/v1/user
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}

	u, err := h.userService.UpdateProfile(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to update profile")
		return
	}
	respondWithJSON(w, http.StatusOK, u)
}

// GET /api/v1/user/search?q=
func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if len(query) < 2 {
		respondWithError(w, http.StatusBadRequest, "Search query must be at least 2 characters")
		return
	}

	results, err := h.userService.SearchUsers(ctx, clerkID, query)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to search users")
		return
	}
	respondWithJSON(w, http.StatusOK, results)
}
