package handlers

import (
	"context"
	"net/http"
	"time"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/notification"
	"resolveAPI/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
	log                 *logger.Logger
}

func NewNotificationHandler(notificationService *services.NotificationService, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		log:                 log.With("handler", "NotificationHandler"),
	}
}

// POST /api/v1/notifications/devices - Register an FCM device token
func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req notification.RegisterDeviceRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	device, err := h.notificationService.RegisterDevice(ctx, userID, &req)
	if err != nil {
		respondWithServiceError(w, h.log, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, device)
}
