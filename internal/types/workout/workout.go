package workout

import (
	"time"
)

type Intensity string

const (
	IntensityLow      Intensity = "low"
	IntensityModerate Intensity = "moderate"
	IntensityHigh     Intensity = "high"
)

type Focus string

const (
	FocusUpperBody Focus = "upper_body"
	FocusLowerBody Focus = "lower_body"
	FocusCore      Focus = "core"
	FocusCardio    Focus = "cardio"
	FocusMobility  Focus = "mobility"
)

// Foci is the fixed rotation order used when recommending what to train next.
var Foci = []Focus{FocusUpperBody, FocusLowerBody, FocusCore, FocusCardio, FocusMobility}

type Workout struct {
	ID              string    `json:"id" db:"id"`
	UserID          string    `json:"userId" db:"user_id"`
	Kind            string    `json:"kind" db:"kind"`
	Focus           Focus     `json:"focus" db:"focus"`
	DurationMinutes int       `json:"durationMinutes" db:"duration_minutes"`
	Intensity       Intensity `json:"intensity" db:"intensity"`
	Notes           *string   `json:"notes,omitempty" db:"notes"`
	PerformedAt     time.Time `json:"performedAt" db:"performed_at"`
}

type LogWorkoutRequest struct {
	Kind            string     `json:"kind"`
	Focus           Focus      `json:"focus"`
	DurationMinutes int        `json:"durationMinutes"`
	Intensity       Intensity  `json:"intensity"`
	Notes           *string    `json:"notes,omitempty"`
	PerformedAt     *time.Time `json:"performedAt,omitempty"`
}

type Recommendation struct {
	Focus           Focus     `json:"focus"`
	Intensity       Intensity `json:"intensity"`
	DurationMinutes int       `json:"durationMinutes"`
	Reason          string    `json:"reason"`
}
