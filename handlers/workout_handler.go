package handlers

import (
	"context"
	"net/http"
	"time"

	"coliseumAPI/internal/types/workout"
	"coliseumAPI/services"

	"go.uber.org/zap"
)

type WorkoutHandler struct {
	workoutService *services.WorkoutService
	log            *zap.SugaredLogger
}

func NewWorkoutHandler(workoutService *services.WorkoutService, log *zap.SugaredLogger) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService, log: log}
}

// POST /api/v1/workouts
func (h *WorkoutHandler) LogWorkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req workout.LogWorkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	logged, err := h.workoutService.LogWorkout(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to log workout")
		return
	}
	respondWithJSON(w, http.StatusCreated, logged)
}

// GET /api/v1/workouts
func (h *WorkoutHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "since must be an RFC3339 timestamp")
			return
		}
		since = parsed
	}

	list, err := h.workoutService.ListWorkouts(ctx, clerkID, since)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to list workouts")
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

// GET /api/v1/workouts/recommendation
func (h *WorkoutHandler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	rec, err := h.workoutService.Recommend(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to build recommendation")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}
