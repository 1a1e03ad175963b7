package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resolveAPI/internal/apierr"
	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/store"
	"resolveAPI/internal/types/notification"
)

type NotificationService struct {
	store      store.Store
	dispatcher *NotificationDispatcher
	log        *logger.Logger
}

func NewNotificationService(st store.Store, dispatcher *NotificationDispatcher, log *logger.Logger) *NotificationService {
	return &NotificationService{
		store:      st,
		dispatcher: dispatcher,
		log:        log.With("service", "NotificationService"),
	}
}

func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) (*notification.DeviceToken, error) {
	token := strings.TrimSpace(req.Token)
	if token == "" {
		return nil, apierr.BadRequest(fmt.Errorf("token is required"))
	}
	switch req.Platform {
	case "ios", "android", "web":
	default:
		return nil, apierr.BadRequest(fmt.Errorf("platform must be one of ios, android, web"))
	}

	d := notification.DeviceToken{
		UserID:    userID,
		Token:     token,
		Platform:  req.Platform,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.RegisterDevice(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Enqueue hands n to the dispatcher. Without a dispatcher it is a no-op.
func (s *NotificationService) Enqueue(n *notification.Notification) bool {
	if s == nil || s.dispatcher == nil {
		return false
	}
	return s.dispatcher.Dispatch(n)
}
