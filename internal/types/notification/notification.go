package notification

import (
	"time"
)

type NotificationType string

const (
	TypeBuddyRequest         NotificationType = "buddy_request"
	TypeBuddyRequestResponse NotificationType = "buddy_request_response"
	TypeChallenge            NotificationType = "challenge"
	TypeEncouragement        NotificationType = "encouragement"
)

// Event is a post-commit fact published by a workflow and consumed by the dispatcher.
type Event struct {
	Type        NotificationType
	RecipientID string
	SenderName  string
	Text        string
	Accepted    bool
}

// Notification is the notifications/{id} document shown in the in-app inbox.
type Notification struct {
	ID        string           `json:"id" firestore:"-"`
	UserID    string           `json:"userId" firestore:"userId"`
	Type      NotificationType `json:"type" firestore:"type"`
	Title     string           `json:"title" firestore:"title"`
	Body      string           `json:"body" firestore:"body"`
	IsRead    bool             `json:"isRead" firestore:"isRead"`
	Data      map[string]any   `json:"data,omitempty" firestore:"data,omitempty"`
	CreatedAt time.Time        `json:"createdAt" firestore:"createdAt"`
}

type DeviceToken struct {
	Token    string `json:"token" firestore:"token"`
	Platform string `json:"platform" firestore:"platform"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
