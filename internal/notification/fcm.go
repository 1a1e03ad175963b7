package notification

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/notification"
)

// messageSender is the slice of *messaging.Client that FCMService uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type FCMService struct {
	client messageSender
	log    *logger.Logger
}

// NewFCMService prefers base64 credentials in FCM_SERVICE_ACCOUNT_JSON and
// falls back to the service account file at credentialsFile.
func NewFCMService(ctx context.Context, log *logger.Logger, credentialsFile string) (*FCMService, error) {
	var opt option.ClientOption

	if encoded := os.Getenv("FCM_SERVICE_ACCOUNT_JSON"); encoded != "" {
		decoded, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FCM_SERVICE_ACCOUNT_JSON: %w", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Info("FCM initializing from environment credentials")
	} else {
		if credentialsFile == "" {
			return nil, fmt.Errorf("no firebase credentials configured")
		}
		if _, err := os.Stat(credentialsFile); err != nil {
			return nil, fmt.Errorf("firebase credentials file %s: %w", credentialsFile, err)
		}
		opt = option.WithCredentialsFile(credentialsFile)
		log.Info("FCM initializing from credentials file", "path", credentialsFile)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %w", err)
	}

	return &FCMService{client: client, log: log.With("service", "FCM")}, nil
}

// SendResult reports per-token delivery. Invalid holds tokens FCM reported
// as unregistered; callers should forget them.
type SendResult struct {
	Sent    int
	Failed  int
	Invalid []string
}

// SendPush sends one message per device. It fails only when every send failed.
func (s *FCMService) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) (SendResult, error) {
	var res SendResult
	if len(tokens) == 0 {
		return res, nil
	}

	stringData := make(map[string]string, len(data))
	for k, v := range data {
		stringData[k] = fmt.Sprintf("%v", v)
	}

	for _, t := range tokens {
		_, err := s.client.Send(ctx, buildMessage(t, title, body, stringData))
		if err != nil {
			res.Failed++
			if messaging.IsUnregistered(err) || messaging.IsInvalidArgument(err) {
				res.Invalid = append(res.Invalid, t.Token)
			}
			s.log.Warn("push send failed", "platform", t.Platform, "error", err)
			continue
		}
		res.Sent++
	}

	s.log.Debug("push batch finished", "sent", res.Sent, "failed", res.Failed)
	if res.Sent == 0 && res.Failed > 0 {
		return res, fmt.Errorf("all %d push notifications failed", res.Failed)
	}
	return res, nil
}

func buildMessage(t notification.DeviceToken, title, body string, data map[string]string) *messaging.Message {
	msg := &messaging.Message{
		Token: t.Token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	switch t.Platform {
	case "ios":
		msg.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{Aps: &messaging.Aps{Sound: "default"}},
		}
	case "web":
		msg.Webpush = &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{Title: title, Body: body},
		}
	default:
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		}
	}
	return msg
}
