package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testDoc struct {
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"createdAt"`
}

func TestMemoryStoreCreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	id, err := store.Create(ctx, "things", testDoc{Name: "a", Status: "pending", CreatedAt: created})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NoError(t, store.Update(ctx, "things", id, map[string]any{"status": "accepted"}))

	snap, err := store.Get(ctx, "things", id)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID())

	var got testDoc
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, "accepted", got.Status)
	assert.True(t, created.Equal(got.CreatedAt))

	_, err = store.Get(ctx, "things", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreQueryFilters(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	type status string
	for i, name := range []string{"a", "b", "c", "d"} {
		st := "pending"
		if i%2 == 1 {
			st = "accepted"
		}
		require.NoError(t, store.Set(ctx, "things", name, testDoc{Name: name, Status: st, Score: i}))
	}

	snaps, err := store.Query(ctx, Query{Collection: "things", Filters: []Filter{Eq("status", status("accepted"))}})
	require.NoError(t, err)
	assert.Len(t, snaps, 2)

	snaps, err = store.Query(ctx, Query{Collection: "things", Filters: []Filter{In("name", []string{"a", "c", "z"}), Eq("status", "pending")}})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "a", snaps[0].ID())
	assert.Equal(t, "c", snaps[1].ID())

	snaps, err = store.Query(ctx, Query{Collection: "things", Filters: []Filter{Eq("score", 3)}})
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "d", snaps[0].ID())

	snaps, err = store.Query(ctx, Query{Collection: "things", OrderByDesc: "name", Limit: 2})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "d", snaps[0].ID())
}

func TestMemoryStoreFailureInjection(t *testing.T) {
	store := NewMemoryStore()
	boom := errors.New("boom")
	store.Fail = func(op string, q Query) error {
		if op == "query" {
			return boom
		}
		return nil
	}

	_, err := store.Query(context.Background(), Query{Collection: "things"})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestBatches(t *testing.T) {
	values := make([]string, 23)
	for i := range values {
		values[i] = string(rune('a' + i))
	}

	batches := Batches(values, MaxInValues)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 3)

	assert.Empty(t, Batches(nil, 10))
}

func TestMemoryStoreUpdateIf(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	id, err := store.Create(ctx, "things", testDoc{Name: "a", Status: "pending"})
	require.NoError(t, err)

	require.NoError(t, store.UpdateIf(ctx, "things", id, Eq("status", "pending"), map[string]any{"status": "accepted"}))

	err = store.UpdateIf(ctx, "things", id, Eq("status", "pending"), map[string]any{"status": "declined"})
	assert.ErrorIs(t, err, ErrPreconditionFailed)

	snap, err := store.Get(ctx, "things", id)
	require.NoError(t, err)
	var got testDoc
	require.NoError(t, snap.DataTo(&got))
	assert.Equal(t, "accepted", got.Status)

	err = store.UpdateIf(ctx, "things", "missing", Eq("status", "pending"), map[string]any{"status": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreOrdersTimestampsChronologically(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// RFC 3339 strings with different fractional lengths sort wrong lexically.
	base := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	_, err := store.Create(ctx, "things", testDoc{Name: "later", CreatedAt: base.Add(500 * time.Millisecond)})
	require.NoError(t, err)
	_, err = store.Create(ctx, "things", testDoc{Name: "earlier", CreatedAt: base.Add(123456789 * time.Nanosecond)})
	require.NoError(t, err)
	_, err = store.Create(ctx, "things", testDoc{Name: "first", CreatedAt: base})
	require.NoError(t, err)

	snaps, err := store.Query(ctx, Query{Collection: "things", OrderByDesc: "createdAt"})
	require.NoError(t, err)

	var names []string
	for _, snap := range snaps {
		var d testDoc
		require.NoError(t, snap.DataTo(&d))
		names = append(names, d.Name)
	}
	assert.Equal(t, []string{"later", "earlier", "first"}, names)
}

func TestMemoryStoreOrdersNumbers(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, score := range []int{9, 10, 100} {
		_, err := store.Create(ctx, "things", testDoc{Score: score})
		require.NoError(t, err)
	}

	snaps, err := store.Query(ctx, Query{Collection: "things", OrderByDesc: "score"})
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	var top testDoc
	require.NoError(t, snaps[0].DataTo(&top))
	assert.Equal(t, 100, top.Score)
}

func TestEachPagesThroughEveryDocument(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for i := 0; i < 25; i++ {
		require.NoError(t, store.Set(ctx, "things", fmt.Sprintf("doc-%03d", i), testDoc{Status: "open"}))
	}
	require.NoError(t, store.Set(ctx, "things", "closed", testDoc{Status: "closed"}))

	var queries int
	store.Fail = func(op string, q Query) error {
		if op == "query" {
			queries++
		}
		return nil
	}

	seen := make(map[string]bool)
	err := Each(ctx, store, Query{Collection: "things", Filters: []Filter{Eq("status", "open")}}, 10, func(s Snapshot) error {
		assert.False(t, seen[s.ID()], "document visited twice")
		seen[s.ID()] = true
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 25)
	assert.Equal(t, 3, queries)

	stop := errors.New("stop")
	err = Each(ctx, store, Query{Collection: "things"}, 10, func(Snapshot) error { return stop })
	assert.ErrorIs(t, err, stop)
}
