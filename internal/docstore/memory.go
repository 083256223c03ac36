package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. Documents are kept as their JSON form, so types
// must use the same field names in their json and firestore tags.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
	order       map[string][]string

	// Fail, when set, is consulted before every operation and can inject errors.
	Fail func(op string, q Query) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		order:       make(map[string][]string),
	}
}

type memorySnapshot struct {
	id   string
	data map[string]any
}

func (s memorySnapshot) ID() string { return s.id }

func (s memorySnapshot) DataTo(dst any) error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

func toDocument(data any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("document must encode to an object: %w", err)
	}
	return doc, nil
}

func normalize(value any) (any, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	err = json.Unmarshal(raw, &out)
	return out, err
}

func (m *MemoryStore) fail(op string, q Query) error {
	if m.Fail == nil {
		return nil
	}
	return m.Fail(op, q)
}

func (m *MemoryStore) put(collection, id string, doc map[string]any) {
	docs, ok := m.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		m.collections[collection] = docs
	}
	if _, exists := docs[id]; !exists {
		m.order[collection] = append(m.order[collection], id)
	}
	docs[id] = doc
}

func (m *MemoryStore) Create(ctx context.Context, collection string, data any) (string, error) {
	if err := m.fail("create", Query{Collection: collection}); err != nil {
		return "", err
	}
	doc, err := toDocument(data)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, doc)
	return id, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, id string, data any) error {
	if err := m.fail("set", Query{Collection: collection}); err != nil {
		return err
	}
	doc, err := toDocument(data)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(collection, id, doc)
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	if err := m.fail("get", Query{Collection: collection}); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return memorySnapshot{id: id, data: copyDoc(doc)}, nil
}

func (m *MemoryStore) Query(ctx context.Context, q Query) ([]Snapshot, error) {
	if err := m.fail("query", q); err != nil {
		return nil, err
	}

	filters := make([]Filter, 0, len(q.Filters))
	for _, f := range q.Filters {
		value, err := normalize(f.Value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, Filter{Field: f.Field, Op: f.Op, Value: value})
	}

	m.mu.RLock()
	var out []memorySnapshot
	for _, id := range m.order[q.Collection] {
		if q.OrderByID && q.StartAfterID != "" && id <= q.StartAfterID {
			continue
		}
		doc := m.collections[q.Collection][id]
		if matches(doc, filters) {
			out = append(out, memorySnapshot{id: id, data: copyDoc(doc)})
		}
	}
	m.mu.RUnlock()

	if q.OrderByDesc != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return compareValues(out[i].data[q.OrderByDesc], out[j].data[q.OrderByDesc]) > 0
		})
	}
	if q.OrderByID {
		sort.SliceStable(out, func(i, j int) bool { return out[i].id < out[j].id })
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}

	snaps := make([]Snapshot, len(out))
	for i := range out {
		snaps[i] = out[i]
	}
	return snaps, nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	if err := m.fail("update", Query{Collection: collection}); err != nil {
		return err
	}
	patch, err := toDocument(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		doc = make(map[string]any)
	}
	for k, v := range patch {
		doc[k] = v
	}
	m.put(collection, id, doc)
	return nil
}

func (m *MemoryStore) UpdateIf(ctx context.Context, collection, id string, cond Filter, fields map[string]any) error {
	if err := m.fail("update", Query{Collection: collection, Filters: []Filter{cond}}); err != nil {
		return err
	}
	if cond.Op != OpEqual {
		return fmt.Errorf("update %s/%s: unsupported condition %q", collection, id, cond.Op)
	}
	want, err := normalize(cond.Value)
	if err != nil {
		return err
	}
	patch, err := toDocument(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	if !reflect.DeepEqual(doc[cond.Field], want) {
		return ErrPreconditionFailed
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return m.fail("ping", Query{})
}

// Count returns the number of documents in a collection.
func (m *MemoryStore) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections[collection])
}

func matches(doc map[string]any, filters []Filter) bool {
	for _, f := range filters {
		got, ok := doc[f.Field]
		if !ok {
			return false
		}
		switch f.Op {
		case OpEqual:
			if !reflect.DeepEqual(got, f.Value) {
				return false
			}
		case OpIn:
			values, _ := f.Value.([]any)
			found := false
			for _, v := range values {
				if reflect.DeepEqual(got, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// compareValues orders the JSON forms Firestore would order natively: numbers
// numerically, RFC 3339 timestamps chronologically, everything else as strings.
func compareValues(a, b any) int {
	if x, ok := a.(float64); ok {
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			}
			return 0
		}
	}
	if x, ok := a.(string); ok {
		if y, ok := b.(string); ok {
			tx, errX := time.Parse(time.RFC3339Nano, x)
			ty, errY := time.Parse(time.RFC3339Nano, y)
			if errX == nil && errY == nil {
				return tx.Compare(ty)
			}
			return strings.Compare(x, y)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
