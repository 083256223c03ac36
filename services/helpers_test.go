package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"coliseumAPI/internal/docstore"
	"coliseumAPI/internal/types/notification"
	"coliseumAPI/internal/user"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// clock returns a now func that advances one second per call.
func clock() func() time.Time {
	var mu sync.Mutex
	current := baseTime
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recordingPublisher) Publish(ctx context.Context, ev notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingPublisher) Events() []notification.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Event(nil), r.events...)
}

func seedUser(t *testing.T, store docstore.Store, id, name, email, phone string) {
	t.Helper()
	u := user.User{
		Email:       email,
		Phone:       phone,
		DisplayName: name,
		CreatedAt:   baseTime,
	}
	if phone != "" {
		u.PhoneLast10 = phone[max(0, len(phone)-10):]
	}
	require.NoError(t, store.Set(context.Background(), usersCollection, id, u))
}
