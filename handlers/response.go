package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"coliseumAPI/internal/types/challenge"
	"coliseumAPI/middleware"
	"coliseumAPI/services"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func requireClerkID(w http.ResponseWriter, r *http.Request) (string, bool) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
	}
	return clerkID, ok
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrEmptyDescription),
		errors.Is(err, services.ErrInvalidRecipient),
		errors.Is(err, services.ErrSelfRequest),
		errors.Is(err, services.ErrEmptyMessage),
		errors.Is(err, services.ErrMessageTooLong),
		errors.Is(err, services.ErrInvalidWalletAddress),
		errors.Is(err, services.ErrInvalidWorkout),
		errors.Is(err, services.ErrInvalidDeviceToken),
		errors.Is(err, challenge.ErrInvalidWager):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrPermissionDenied),
		errors.Is(err, services.ErrNotRecipient),
		errors.Is(err, services.ErrNotBuddies):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrVideoNotFound),
		errors.Is(err, services.ErrNoThumbnail):
		return http.StatusNotFound
	case errors.Is(err, services.ErrRequestNotPending),
		errors.Is(err, services.ErrRequestAlreadyPending),
		errors.Is(err, services.ErrAlreadyBuddies),
		errors.Is(err, services.ErrWalletNotConnected):
		return http.StatusConflict
	case errors.Is(err, services.ErrWorkoutsUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// respondWithServiceError shows domain errors verbatim and hides remote failures
// behind the generic message.
func respondWithServiceError(w http.ResponseWriter, log *zap.SugaredLogger, err error, generic string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Errorw(generic, "error", err)
		respondWithError(w, code, generic)
		return
	}
	respondWithError(w, code, err.Error())
}
