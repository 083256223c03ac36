package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"coliseumAPI/internal/types/contact"
	"coliseumAPI/services"

	"go.uber.org/zap"
)

type ContactHandler struct {
	contactService *services.ContactService
	userService    *services.UserService
	log            *zap.SugaredLogger
}

func NewContactHandler(contactService *services.ContactService, userService *services.UserService, log *zap.SugaredLogger) *ContactHandler {
	return &ContactHandler{contactService: contactService, userService: userService, log: log}
}

// POST /api/v1/contacts/scan
func (h *ContactHandler) ScanContacts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req contact.ScanRequest
	if !decodeBody(w, r, &req) {
		return
	}

	caller := contact.RegisteredUser{ID: clerkID}
	u, err := h.userService.GetUser(ctx, clerkID)
	switch {
	case err == nil:
		caller = u.Registered()
	case !errors.Is(err, services.ErrUserNotFound):
		respondWithServiceError(w, h.log, err, "Failed to scan contacts")
		return
	}

	result, err := h.contactService.ScanContacts(ctx, caller, &req)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to scan contacts")
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
