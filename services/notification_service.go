package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/types/notification"

	"go.uber.org/zap"
)

const (
	notificationsCollection = "notifications"
	notificationListLimit   = 50
)

type PushNotificationProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]any) error
}

type template struct {
	title string
	body  string
}

var templates = map[notification.NotificationType]template{
	notification.TypeBuddyRequest:         {title: "New buddy request", body: "{{sender}} wants to be your workout buddy"},
	notification.TypeBuddyRequestResponse: {title: "Buddy request {{verdict}}", body: "{{sender}} {{verdict}} your buddy request"},
	notification.TypeChallenge:            {title: "{{sender}} challenged you", body: "{{text}}"},
	notification.TypeEncouragement:        {title: "{{sender}} is cheering you on", body: "{{text}}"},
}

// NotificationService writes inbox documents and pushes them to the recipient's
// devices. It is only called from the dispatcher workers.
type NotificationService struct {
	store        docstore.Store
	users        UserLookup
	pushProvider PushNotificationProvider
	log          *zap.SugaredLogger
	now          func() time.Time
}

func NewNotificationService(store docstore.Store, users UserLookup, log *zap.SugaredLogger) *NotificationService {
	return &NotificationService{store: store, users: users, log: log, now: time.Now}
}

// SetPushProvider injects the FCM provider from main. Without one only the inbox
// document is written.
func (s *NotificationService) SetPushProvider(provider PushNotificationProvider) {
	s.pushProvider = provider
}

func (s *NotificationService) NotifyBuddyRequest(ctx context.Context, recipientID, senderName string) error {
	return s.Notify(ctx, notification.Event{
		Type:        notification.TypeBuddyRequest,
		RecipientID: recipientID,
		SenderName:  senderName,
	})
}

func (s *NotificationService) NotifyBuddyRequestResponse(ctx context.Context, recipientID, responderName string, accepted bool) error {
	return s.Notify(ctx, notification.Event{
		Type:        notification.TypeBuddyRequestResponse,
		RecipientID: recipientID,
		SenderName:  responderName,
		Accepted:    accepted,
	})
}

func (s *NotificationService) NotifyChallenge(ctx context.Context, recipientID, senderName, challengeText string) error {
	return s.Notify(ctx, notification.Event{
		Type:        notification.TypeChallenge,
		RecipientID: recipientID,
		SenderName:  senderName,
		Text:        challengeText,
	})
}

func (s *NotificationService) NotifyEncouragement(ctx context.Context, recipientID, senderName, message string) error {
	return s.Notify(ctx, notification.Event{
		Type:        notification.TypeEncouragement,
		RecipientID: recipientID,
		SenderName:  senderName,
		Text:        message,
	})
}

// Notify renders and stores the inbox entry, then pushes it.
func (s *NotificationService) Notify(ctx context.Context, ev notification.Event) error {
	tmpl, ok := templates[ev.Type]
	if !ok {
		return fmt.Errorf("unknown notification type %q", ev.Type)
	}
	if ev.RecipientID == "" {
		return fmt.Errorf("notification %s has no recipient", ev.Type)
	}

	vars := map[string]string{
		"sender":  ev.SenderName,
		"text":    ev.Text,
		"verdict": "declined",
	}
	if ev.Accepted {
		vars["verdict"] = "accepted"
	}

	data := map[string]any{"type": string(ev.Type), "sender": ev.SenderName}
	if ev.Type == notification.TypeBuddyRequestResponse {
		data["accepted"] = ev.Accepted
	}

	notif := &notification.Notification{
		UserID:    ev.RecipientID,
		Type:      ev.Type,
		Title:     renderTemplate(tmpl.title, vars),
		Body:      renderTemplate(tmpl.body, vars),
		Data:      data,
		CreatedAt: s.now(),
	}

	id, err := s.store.Create(ctx, notificationsCollection, notif)
	if err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}
	notif.ID = id

	if s.pushProvider == nil {
		return nil
	}
	recipient, err := s.users.GetUser(ctx, ev.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}
	if len(recipient.DeviceTokens) == 0 {
		return nil
	}
	if err := s.pushProvider.SendPush(ctx, recipient.DeviceTokens, notif.Title, notif.Body, notif.Data); err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	return nil
}

func renderTemplate(tmpl string, vars map[string]string) string {
	result := tmpl
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{"+key+"}}", value)
	}
	return result
}

// RegisterDevice adds a push token to the user's document, ignoring duplicates.
func (s *NotificationService) RegisterDevice(ctx context.Context, userID string, req *notification.RegisterDeviceRequest) error {
	token := strings.TrimSpace(req.Token)
	platform := strings.ToLower(strings.TrimSpace(req.Platform))
	if token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidDeviceToken)
	}
	switch platform {
	case "ios", "android", "web":
	case "":
		platform = "android"
	default:
		return fmt.Errorf("%w: unsupported platform %q", ErrInvalidDeviceToken, req.Platform)
	}

	u, err := s.users.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}

	var tokens []notification.DeviceToken
	if u != nil {
		for _, t := range u.DeviceTokens {
			if t.Token == token {
				if t.Platform == platform {
					return nil
				}
				continue
			}
			tokens = append(tokens, t)
		}
	}
	tokens = append(tokens, notification.DeviceToken{Token: token, Platform: platform})

	if err := s.store.Update(ctx, usersCollection, userID, map[string]any{
		"deviceTokens": tokens,
		"updatedAt":    s.now(),
	}); err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID string) ([]notification.Notification, error) {
	snaps, err := s.store.Query(ctx, docstore.Query{
		Collection:  notificationsCollection,
		Filters:     []docstore.Filter{docstore.Eq("userId", userID)},
		OrderByDesc: "createdAt",
		Limit:       notificationListLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	out := make([]notification.Notification, 0, len(snaps))
	for _, snap := range snaps {
		var n notification.Notification
		if err := snap.DataTo(&n); err != nil {
			return nil, fmt.Errorf("failed to decode notification %s: %w", snap.ID(), err)
		}
		n.ID = snap.ID()
		out = append(out, n)
	}
	return out, nil
}
