package video

import "time"

// ColiseumVideo is a coliseum/{id} document.
type ColiseumVideo struct {
	ID           string     `json:"id" firestore:"-"`
	OwnerID      string     `json:"ownerId" firestore:"ownerId"`
	ChallengeID  string     `json:"challengeId,omitempty" firestore:"challengeId,omitempty"`
	VideoURL     string     `json:"videoUrl" firestore:"videoUrl"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty" firestore:"thumbnailUrl,omitempty"`
	Enhanced     bool       `json:"enhanced" firestore:"enhanced"`
	EnhancedAt   *time.Time `json:"enhancedAt,omitempty" firestore:"enhancedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt" firestore:"createdAt"`
}

// Progress is reported after every video of an enhancement pass, failed or not.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type EnhanceResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Total     int `json:"total"`
}
