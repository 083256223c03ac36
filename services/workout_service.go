package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"coliseumAPI/internal/types/workout"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	workoutListLimit       = 50
	recommendationWindow   = 14 * 24 * time.Hour
	defaultWorkoutDuration = 30
	maxWorkoutDuration     = 600
	streakBeforeRecovery   = 3
	restBeforeHighEffort   = 3
)

const workoutsSchema = `
CREATE TABLE IF NOT EXISTS workouts (
	id               UUID PRIMARY KEY,
	user_id          TEXT NOT NULL,
	kind             TEXT NOT NULL,
	focus            TEXT NOT NULL,
	duration_minutes INTEGER NOT NULL CHECK (duration_minutes BETWEEN 1 AND 600),
	intensity        TEXT NOT NULL,
	notes            TEXT,
	performed_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS workouts_user_performed_idx ON workouts (user_id, performed_at DESC);
`

// WorkoutService keeps workout history in Postgres. A nil pool disables it.
type WorkoutService struct {
	db  *pgxpool.Pool
	log *zap.SugaredLogger
	now func() time.Time
}

func NewWorkoutService(db *pgxpool.Pool, log *zap.SugaredLogger) *WorkoutService {
	return &WorkoutService{db: db, log: log, now: time.Now}
}

func (s *WorkoutService) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return ErrWorkoutsUnavailable
	}
	if _, err := s.db.Exec(ctx, workoutsSchema); err != nil {
		return fmt.Errorf("failed to create workouts schema: %w", err)
	}
	return nil
}

func validFocus(f workout.Focus) bool {
	for _, known := range workout.Foci {
		if f == known {
			return true
		}
	}
	return false
}

// ValidateWorkout normalizes the request in place.
func ValidateWorkout(req *workout.LogWorkoutRequest) error {
	req.Kind = strings.TrimSpace(req.Kind)
	if req.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidWorkout)
	}
	if req.DurationMinutes < 1 || req.DurationMinutes > maxWorkoutDuration {
		return fmt.Errorf("%w: durationMinutes must be between 1 and %d", ErrInvalidWorkout, maxWorkoutDuration)
	}
	switch req.Intensity {
	case workout.IntensityLow, workout.IntensityModerate, workout.IntensityHigh:
	case "":
		req.Intensity = workout.IntensityModerate
	default:
		return fmt.Errorf("%w: intensity must be low, moderate or high", ErrInvalidWorkout)
	}
	if req.Focus == "" {
		req.Focus = workout.FocusCardio
	}
	if !validFocus(req.Focus) {
		return fmt.Errorf("%w: unknown focus %q", ErrInvalidWorkout, req.Focus)
	}
	return nil
}

func (s *WorkoutService) LogWorkout(ctx context.Context, userID string, req *workout.LogWorkoutRequest) (*workout.Workout, error) {
	if err := ValidateWorkout(req); err != nil {
		return nil, err
	}
	if s.db == nil {
		return nil, ErrWorkoutsUnavailable
	}

	performedAt := s.now()
	if req.PerformedAt != nil {
		performedAt = *req.PerformedAt
	}

	w := &workout.Workout{}
	query := `
	INSERT INTO workouts (id, user_id, kind, focus, duration_minutes, intensity, notes, performed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id::text, user_id, kind, focus, duration_minutes, intensity, notes, performed_at
	`
	err := s.db.QueryRow(ctx, query,
		uuid.New().String(),
		userID,
		req.Kind,
		req.Focus,
		req.DurationMinutes,
		req.Intensity,
		req.Notes,
		performedAt,
	).Scan(
		&w.ID,
		&w.UserID,
		&w.Kind,
		&w.Focus,
		&w.DurationMinutes,
		&w.Intensity,
		&w.Notes,
		&w.PerformedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to log workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns the newest workouts first. A zero since means no lower bound.
func (s *WorkoutService) ListWorkouts(ctx context.Context, userID string, since time.Time) ([]workout.Workout, error) {
	if s.db == nil {
		return nil, ErrWorkoutsUnavailable
	}

	query := `
	SELECT id::text, user_id, kind, focus, duration_minutes, intensity, notes, performed_at
	FROM workouts
	WHERE user_id = $1 AND performed_at >= $2
	ORDER BY performed_at DESC
	LIMIT $3
	`
	rows, err := s.db.Query(ctx, query, userID, since, workoutListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list workouts: %w", err)
	}

	workouts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (workout.Workout, error) {
		var w workout.Workout
		err := row.Scan(&w.ID, &w.UserID, &w.Kind, &w.Focus, &w.DurationMinutes, &w.Intensity, &w.Notes, &w.PerformedAt)
		return w, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan workouts: %w", err)
	}
	return workouts, nil
}

func (s *WorkoutService) Recommend(ctx context.Context, userID string) (*workout.Recommendation, error) {
	now := s.now()
	history, err := s.ListWorkouts(ctx, userID, now.Add(-recommendationWindow))
	if err != nil {
		return nil, err
	}
	return BuildRecommendation(history, now), nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// BuildRecommendation picks the least trained focus of the window, lowers the
// intensity after a streak and raises it after a long rest. Ties between foci
// follow workout.Foci order.
func BuildRecommendation(history []workout.Workout, now time.Time) *workout.Recommendation {
	if len(history) == 0 {
		return &workout.Recommendation{
			Focus:           workout.Foci[0],
			Intensity:       workout.IntensityModerate,
			DurationMinutes: defaultWorkoutDuration,
			Reason:          "No recent workouts, start with a moderate session",
		}
	}

	counts := make(map[workout.Focus]int, len(workout.Foci))
	days := make(map[string]bool)
	total := 0
	var last time.Time
	for _, w := range history {
		counts[w.Focus]++
		days[dayKey(w.PerformedAt)] = true
		total += w.DurationMinutes
		if w.PerformedAt.After(last) {
			last = w.PerformedAt
		}
	}

	foci := append([]workout.Focus(nil), workout.Foci...)
	sort.SliceStable(foci, func(i, j int) bool { return counts[foci[i]] < counts[foci[j]] })
	focus := foci[0]

	// Consecutive active days ending today, or yesterday when today is still open.
	streak := 0
	cursor := now
	if !days[dayKey(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for days[dayKey(cursor)] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	restDays := int(now.UTC().Truncate(24*time.Hour).Sub(last.UTC().Truncate(24*time.Hour)).Hours() / 24)

	intensity := workout.IntensityModerate
	reason := fmt.Sprintf("%s is your least trained area in the last two weeks", strings.ReplaceAll(string(focus), "_", " "))
	switch {
	case streak >= streakBeforeRecovery:
		intensity = workout.IntensityLow
		reason += fmt.Sprintf("; %d days in a row, keep it light", streak)
	case restDays >= restBeforeHighEffort:
		intensity = workout.IntensityHigh
		reason += fmt.Sprintf("; %d rest days, push harder", restDays)
	}

	return &workout.Recommendation{
		Focus:           focus,
		Intensity:       intensity,
		DurationMinutes: int(math.Round(float64(total) / float64(len(history)))),
		Reason:          reason,
	}
}
