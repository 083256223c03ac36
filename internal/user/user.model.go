package user

import (
	"time"

	"coliseumAPI/internal/types/contact"
	"coliseumAPI/internal/types/notification"
)

// User is the users/{clerkId} document.
type User struct {
	ID           string                     `json:"id" firestore:"-"`
	Email        string                     `json:"email" firestore:"email"`
	Phone        string                     `json:"phone,omitempty" firestore:"phone,omitempty"`
	PhoneLast10  string                     `json:"phoneLast10,omitempty" firestore:"phoneLast10,omitempty"`
	DisplayName  string                     `json:"displayName" firestore:"displayName"`
	ImageURL     string                     `json:"imageUrl,omitempty" firestore:"imageUrl,omitempty"`
	DeviceTokens []notification.DeviceToken `json:"deviceTokens,omitempty" firestore:"deviceTokens,omitempty"`
	CreatedAt    time.Time                  `json:"createdAt" firestore:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt" firestore:"updatedAt"`
}

func (u *User) Registered() contact.RegisteredUser {
	return contact.RegisteredUser{
		ID:          u.ID,
		Email:       u.Email,
		Phone:       u.Phone,
		DisplayName: u.DisplayName,
	}
}

// Name falls back to the email address when no display name is set.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
