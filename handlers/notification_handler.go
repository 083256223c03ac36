package handlers

import (
	"context"
	"net/http"
	"time"

	"coliseumAPI/internal/types/notification"
	"coliseumAPI/services"

	"go.uber.org/zap"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	log                 *zap.SugaredLogger
}

func NewNotificationHandler(notificationService *services.NotificationService, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, log: log}
}

// GET /api/v1/notifications - Get user's notifications
func (h *NotificationHandler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	list, err := h.notificationService.ListNotifications(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, h.log, err, "Failed to get notifications")
		return
	}
	respondWithJSON(w, http.StatusOK, list)
}

// POST /api/v1/notifications/register-device
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := requireClerkID(w, r)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.notificationService.RegisterDevice(ctx, clerkID, &req); err != nil {
		respondWithServiceError(w, h.log, err, "Failed to register device")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Device registered"})
}
