package services

import (
	"context"
	"os"
	"testing"
	"time"

	"coliseumAPI/internal/types/workout"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWorkout(t *testing.T) {
	tests := []struct {
		name    string
		req     workout.LogWorkoutRequest
		wantErr bool
	}{
		{"valid", workout.LogWorkoutRequest{Kind: "run", DurationMinutes: 30, Intensity: workout.IntensityHigh, Focus: workout.FocusCardio}, false},
		{"defaults", workout.LogWorkoutRequest{Kind: "yoga", DurationMinutes: 45}, false},
		{"empty kind", workout.LogWorkoutRequest{Kind: "  ", DurationMinutes: 30}, true},
		{"zero duration", workout.LogWorkoutRequest{Kind: "run"}, true},
		{"too long", workout.LogWorkoutRequest{Kind: "run", DurationMinutes: 601}, true},
		{"max duration", workout.LogWorkoutRequest{Kind: "ultra", DurationMinutes: 600}, false},
		{"bad intensity", workout.LogWorkoutRequest{Kind: "run", DurationMinutes: 30, Intensity: "extreme"}, true},
		{"bad focus", workout.LogWorkoutRequest{Kind: "run", DurationMinutes: 30, Focus: "toes"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := ValidateWorkout(&req)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidWorkout)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, req.Intensity)
			assert.NotEmpty(t, req.Focus)
		})
	}
}

func TestLogWorkoutWithoutDatabase(t *testing.T) {
	svc := NewWorkoutService(nil, testLogger())

	_, err := svc.LogWorkout(context.Background(), "alice", &workout.LogWorkoutRequest{})
	assert.ErrorIs(t, err, ErrInvalidWorkout, "validation runs before the database check")

	_, err = svc.LogWorkout(context.Background(), "alice", &workout.LogWorkoutRequest{Kind: "run", DurationMinutes: 20})
	assert.ErrorIs(t, err, ErrWorkoutsUnavailable)

	_, err = svc.Recommend(context.Background(), "alice")
	assert.ErrorIs(t, err, ErrWorkoutsUnavailable)
}

func at(daysAgo int, focus workout.Focus, minutes int) workout.Workout {
	return workout.Workout{
		Focus:           focus,
		DurationMinutes: minutes,
		Intensity:       workout.IntensityModerate,
		PerformedAt:     baseTime.AddDate(0, 0, -daysAgo),
	}
}

func TestBuildRecommendation(t *testing.T) {
	now := baseTime.Add(2 * time.Hour)

	t.Run("no history", func(t *testing.T) {
		rec := BuildRecommendation(nil, now)
		assert.Equal(t, workout.FocusUpperBody, rec.Focus)
		assert.Equal(t, workout.IntensityModerate, rec.Intensity)
		assert.Equal(t, 30, rec.DurationMinutes)
	})

	t.Run("least trained focus", func(t *testing.T) {
		history := []workout.Workout{
			at(1, workout.FocusUpperBody, 40),
			at(5, workout.FocusLowerBody, 20),
			at(7, workout.FocusCardio, 30),
			at(9, workout.FocusMobility, 25),
		}
		rec := BuildRecommendation(history, now)
		assert.Equal(t, workout.FocusCore, rec.Focus)
		assert.Equal(t, workout.IntensityModerate, rec.Intensity)
		assert.Equal(t, 29, rec.DurationMinutes, "115/4 rounds to 29")
	})

	t.Run("streak lowers intensity", func(t *testing.T) {
		history := []workout.Workout{
			at(0, workout.FocusUpperBody, 30),
			at(1, workout.FocusLowerBody, 30),
			at(2, workout.FocusCore, 30),
		}
		rec := BuildRecommendation(history, now)
		assert.Equal(t, workout.IntensityLow, rec.Intensity)
		assert.Equal(t, workout.FocusCardio, rec.Focus)
	})

	t.Run("streak ending yesterday counts", func(t *testing.T) {
		history := []workout.Workout{
			at(1, workout.FocusUpperBody, 30),
			at(2, workout.FocusLowerBody, 30),
			at(3, workout.FocusCore, 30),
		}
		assert.Equal(t, workout.IntensityLow, BuildRecommendation(history, now).Intensity)
	})

	t.Run("rest raises intensity", func(t *testing.T) {
		history := []workout.Workout{at(4, workout.FocusCardio, 50)}
		rec := BuildRecommendation(history, now)
		assert.Equal(t, workout.IntensityHigh, rec.Intensity)
		assert.Equal(t, 50, rec.DurationMinutes)
	})
}

func TestWorkoutServicePostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	svc := NewWorkoutService(pool, testLogger())
	require.NoError(t, svc.EnsureSchema(ctx))

	userID := "test-" + time.Now().Format("150405.000000")
	defer pool.Exec(ctx, "DELETE FROM workouts WHERE user_id = $1", userID)

	older := time.Now().Add(-48 * time.Hour)
	_, err = svc.LogWorkout(ctx, userID, &workout.LogWorkoutRequest{Kind: "run", DurationMinutes: 30, PerformedAt: &older})
	require.NoError(t, err)
	logged, err := svc.LogWorkout(ctx, userID, &workout.LogWorkoutRequest{Kind: "lift", DurationMinutes: 50, Focus: workout.FocusUpperBody})
	require.NoError(t, err)
	assert.NotEmpty(t, logged.ID)

	list, err := svc.ListWorkouts(ctx, userID, time.Time{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "lift", list[0].Kind)

	rec, err := svc.Recommend(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 40, rec.DurationMinutes)
}
