package buddy

import (
	"time"
)

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusDeclined RequestStatus = "declined"
)

// Valid reports whether s is one of the known request states.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined:
		return true
	}
	return false
}

// Terminal is true once the request has been answered. Terminal requests never change again.
func (s RequestStatus) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

type MatchedBy string

const (
	MatchedByBuddyRequest MatchedBy = "buddy_request"
	MatchedByContactScan  MatchedBy = "contact_scan"
)

// Request is the buddy_requests document. Kept forever as an audit record.
type Request struct {
	ID            string        `json:"id" firestore:"-"`
	FromUserID    string        `json:"fromUserId" firestore:"fromUserId"`
	FromUserName  string        `json:"fromUserName" firestore:"fromUserName"`
	FromUserEmail string        `json:"fromUserEmail" firestore:"fromUserEmail"`
	ToUserID      string        `json:"toUserId" firestore:"toUserId"`
	ToUserName    string        `json:"toUserName" firestore:"toUserName"`
	ToUserEmail   string        `json:"toUserEmail" firestore:"toUserEmail"`
	Status        RequestStatus `json:"status" firestore:"status"`
	Source        MatchedBy     `json:"source" firestore:"source"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt"`
	RespondedAt   *time.Time    `json:"respondedAt,omitempty" firestore:"respondedAt,omitempty"`
}

// Counterpart returns the id, name and email of the party that is not userID.
func (r *Request) Counterpart(userID string) (id, name, email string) {
	if r.FromUserID == userID {
		return r.ToUserID, r.ToUserName, r.ToUserEmail
	}
	return r.FromUserID, r.FromUserName, r.FromUserEmail
}

// Confirmed lives in users/{ownerId}/buddies/{buddyUserId}. Each side of the
// relationship owns its own copy.
type Confirmed struct {
	BuddyUserID string    `json:"buddyUserId" firestore:"buddyUserId"`
	Name        string    `json:"name" firestore:"name"`
	Email       string    `json:"email" firestore:"email"`
	AddedAt     time.Time `json:"addedAt" firestore:"addedAt"`
	MatchedBy   MatchedBy `json:"matchedBy" firestore:"matchedBy"`
}

type SendRequest struct {
	ToUserID string `json:"toUserId"`
	// Source is contact_scan when the recipient was suggested by a contact scan.
	Source MatchedBy `json:"source,omitempty"`
}

type RespondRequest struct {
	Accept bool `json:"accept"`
}

type EncourageRequest struct {
	Message string `json:"message"`
}

// Lists is what a full buddy screen load returns.
type Lists struct {
	Confirmed []Confirmed `json:"confirmed"`
	Pending   []Request   `json:"pending"`
	Incoming  []Request   `json:"incoming"`
}
