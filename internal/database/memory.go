package database

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rzcleanseal/leads-api/internal/model"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu          sync.RWMutex
	name        string
	collections map[string][]model.Record
}

// NewMemoryStore returns an empty store named name.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:        name,
		collections: make(map[string][]model.Record),
	}
}

// CreateDocument implements DocumentStore.
func (m *MemoryStore) CreateDocument(ctx context.Context, kind string, record model.Record) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := bson.NewObjectID()
	doc := deepCopy(record)
	doc[model.IDField] = id

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[kind] = append(m.collections[kind], doc)
	return id.Hex(), nil
}

// GetDocuments implements DocumentStore.
func (m *MemoryStore) GetDocuments(ctx context.Context, kind string, filter model.Filter, limit int64) ([]model.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := []model.Record{}
	for _, doc := range m.collections[kind] {
		if limit > 0 && int64(len(out)) >= limit {
			break
		}
		if filter.Matches(doc) {
			out = append(out, deepCopy(doc))
		}
	}
	return out, nil
}

// ListCollectionNames implements DocumentStore.
func (m *MemoryStore) ListCollectionNames(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.collections))
	for name, docs := range m.collections {
		if len(docs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) Name() string {
	return m.name
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}

// deepCopy copies maps and slices so callers never share state with
// the store. Other values are immutable.
func deepCopy(src model.Record) model.Record {
	if src == nil {
		return model.Record{}
	}
	dst := make(model.Record, len(src))
	for k, v := range src {
		dst[k] = copyValue(v)
	}
	return dst
}

func copyValue(v any) any {
	switch val := v.(type) {
	case model.Record:
		return deepCopy(val)
	case map[string]any:
		return map[string]any(deepCopy(val))
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = copyValue(inner)
		}
		return out
	default:
		return v
	}
}
