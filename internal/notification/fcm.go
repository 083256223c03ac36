package notification

import (
	"context"
	"fmt"

	"coliseumAPI/internal/types/notification"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMService delivers pushes to registered device tokens. Tokens are sent one by
// one since the batch endpoint is not available for every project.
type FCMService struct {
	client messageSender
	log    *zap.SugaredLogger
}

func NewFCMService(client *messaging.Client, log *zap.SugaredLogger) *FCMService {
	return &FCMService{client: client, log: log}
}

func (s *FCMService) SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error {
	if len(tokens) == 0 {
		return nil
	}

	stringData := make(map[string]string, len(data))
	for k, v := range data {
		stringData[k] = fmt.Sprintf("%v", v)
	}

	successCount := 0
	failureCount := 0
	for _, token := range tokens {
		if token.Token == "" {
			continue
		}
		if _, err := s.client.Send(ctx, buildMessage(token, title, body, stringData)); err != nil {
			s.log.Warnw("FCM: failed to send", "platform", token.Platform, "error", err)
			failureCount++
			continue
		}
		successCount++
	}

	s.log.Debugw("FCM: push finished", "sent", successCount, "failed", failureCount)

	// One delivered token is enough for the notification to count as pushed.
	if successCount == 0 && failureCount > 0 {
		return fmt.Errorf("all %d push notifications failed", failureCount)
	}
	return nil
}

func buildMessage(token notification.DeviceToken, title, body string, data map[string]string) *messaging.Message {
	message := &messaging.Message{
		Token: token.Token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	switch token.Platform {
	case "ios":
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		}
	default:
		message.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Sound: "default",
			},
		}
	}
	return message
}
