package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type firestoreSnapshot struct {
	doc *firestore.DocumentSnapshot
}

func (s firestoreSnapshot) ID() string { return s.doc.Ref.ID }

func (s firestoreSnapshot) DataTo(dst any) error { return s.doc.DataTo(dst) }

func (f *FirestoreStore) Create(ctx context.Context, collection string, data any) (string, error) {
	id := uuid.NewString()
	if _, err := f.client.Collection(collection).Doc(id).Create(ctx, data); err != nil {
		return "", fmt.Errorf("create %s document: %w", collection, err)
	}
	return id, nil
}

func (f *FirestoreStore) Set(ctx context.Context, collection, id string, data any) error {
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *FirestoreStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	doc, err := f.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return firestoreSnapshot{doc: doc}, nil
}

func (f *FirestoreStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	query := f.client.Collection(q.Collection).Query
	for _, filter := range q.Filters {
		query = query.Where(filter.Field, string(filter.Op), filter.Value)
	}
	if q.OrderByDesc != "" {
		query = query.OrderBy(q.OrderByDesc, firestore.Desc)
	}
	if q.OrderByID {
		query = query.OrderBy(firestore.DocumentID, firestore.Asc)
		if q.StartAfterID != "" {
			query = query.StartAfter(q.StartAfterID)
		}
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var out []Snapshot
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", q.Collection, err)
		}
		out = append(out, firestoreSnapshot{doc: doc})
	}
	return out, nil
}

func (f *FirestoreStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if _, err := f.client.Collection(collection).Doc(id).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

// UpdateIf re-reads the document inside a transaction, so a concurrent writer
// either lands first and fails the check or retries the transaction.
func (f *FirestoreStore) UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]any) error {
	if cond.Op != OpEqual {
		return fmt.Errorf("update %s/%s: unsupported condition %q", collection, id, cond.Op)
	}
	ref := f.client.Collection(collection).Doc(id)

	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return ErrNotFound
			}
			return err
		}
		got, err := doc.DataAt(cond.Field)
		if err != nil || !reflect.DeepEqual(got, cond.Value) {
			return ErrPreconditionFailed
		}
		return tx.Set(ref, fields, firestore.MergeAll)
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPreconditionFailed):
		return err
	default:
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
}

// Ping issues a cheap read to verify connectivity.
func (f *FirestoreStore) Ping(ctx context.Context) error {
	iter := f.client.Collections(ctx)
	_, err := iter.Next()
	if err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}
