package store

import (
	"context"
	"sync"

	"github.com/toolgate/toolgate/service/dao"
)

// MemoryStore is a generic in-memory implementation of dao.Conditional.
// It keeps entities of type *T mapped by a comparable key K obtained from
// the supplied keySelector function.
//
// Records are deep-copied on neither read nor write; callers treat loaded
// values as snapshots and perform state changes through Mutate so that the
// guard condition is evaluated under the store lock.
type MemoryStore[K comparable, T any] struct {
	mu          sync.RWMutex
	records     map[K]*T
	keySelector func(*T) K
}

// NewMemoryStore creates a new MemoryStore. keySelector extracts the entity
// key (usually the ID field) from a value.
func NewMemoryStore[K comparable, T any](keySelector func(*T) K) *MemoryStore[K, T] {
	return &MemoryStore[K, T]{
		records:     make(map[K]*T),
		keySelector: keySelector,
	}
}

// Save stores or overwrites a record.
func (s *MemoryStore[K, T]) Save(_ context.Context, v *T) error {
	if v == nil {
		return dao.ErrNilEntity
	}
	key := s.keySelector(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = v
	return nil
}

// Load returns a record by key, or nil when absent.
func (s *MemoryStore[K, T]) Load(_ context.Context, key K) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return v, nil
}

// Delete removes a record.
func (s *MemoryStore[K, T]) Delete(_ context.Context, key K) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// List returns all stored records. Parameter filtering is left to
// higher-level DAOs that know the entity's fields.
func (s *MemoryStore[K, T]) List(_ context.Context, _ ...*dao.Parameter) ([]*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*T, 0, len(s.records))
	for _, v := range s.records {
		out = append(out, v)
	}
	return out, nil
}

// Mutate applies fn to the record under the store lock, so the guard
// condition fn evaluates cannot race with a concurrent Mutate or Save on the
// same key.
func (s *MemoryStore[K, T]) Mutate(_ context.Context, key K, fn dao.Mutator[T]) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[key]
	if !ok {
		return false, dao.ErrNotFound
	}
	if !fn(v) {
		return false, nil
	}
	return true, nil
}

var _ dao.Conditional[string, any] = (*MemoryStore[string, any])(nil)
