// Package docstore is the thin contract the workflows use against the remote
// document database: create, get, query with equality and "in" predicates, and
// merge-update, plus a conditional single-document update. There are no
// multi-document transactions.
package docstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrPreconditionFailed is returned by UpdateIf when the guarded field changed.
	ErrPreconditionFailed = errors.New("document precondition failed")
)

type Op string

const (
	OpEqual Op = "=="
	OpIn    Op = "in"
)

// MaxInValues is the page size constraint of an "in" predicate.
const MaxInValues = 10

type Filter struct {
	Field string
	Op    Op
	Value any
}

func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEqual, Value: value}
}

func In(field string, values []string) Filter {
	return Filter{Field: field, Op: OpIn, Value: values}
}

type Query struct {
	Collection string
	Filters    []Filter
	// OrderBy sorts descending on the named field when set.
	OrderByDesc string
	// OrderByID sorts ascending on the document id and enables StartAfterID.
	OrderByID    bool
	StartAfterID string
	Limit        int
}

// Snapshot is one document returned by Get or Query.
type Snapshot interface {
	ID() string
	DataTo(dst any) error
}

type Store interface {
	// Create stores data under a fresh id and returns it.
	Create(ctx context.Context, collection string, data any) (string, error)
	// Set replaces the document at collection/id.
	Set(ctx context.Context, collection, id string, data any) error
	Get(ctx context.Context, collection, id string) (Snapshot, error)
	Query(ctx context.Context, q Query) ([]Snapshot, error)
	// Update merges fields into an existing document.
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	// UpdateIf merges fields only while the stored document still satisfies cond,
	// atomically with the check. Only equality conditions are supported.
	UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]any) error
	Ping(ctx context.Context) error
}

// Batches splits values into chunks of at most size elements.
func Batches(values []string, size int) [][]string {
	if size <= 0 {
		size = MaxInValues
	}
	var out [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		out = append(out, values[start:end])
	}
	return out
}

// Each pages through every document matching q in document id order. OrderByDesc
// and Limit of q are ignored.
func Each(ctx context.Context, s Store, q Query, pageSize int, fn func(Snapshot) error) error {
	if pageSize <= 0 {
		pageSize = 500
	}
	q.OrderByDesc = ""
	q.OrderByID = true
	q.StartAfterID = ""
	q.Limit = pageSize

	for {
		snaps, err := s.Query(ctx, q)
		if err != nil {
			return err
		}
		for _, snap := range snaps {
			if err := fn(snap); err != nil {
				return err
			}
		}
		if len(snaps) < pageSize {
			return nil
		}
		q.StartAfterID = snaps[len(snaps)-1].ID()
	}
}
