package state

import (
	"context"
	"sync"
)

// MemoryStore is a minimal in-memory Store implementation intended for tests
// and examples. Snapshots are kept as given; callers that mutate a loaded
// value in place should clone it first.
type MemoryStore[T any] struct {
	mu      sync.RWMutex
	records map[string]memoryRecord[T]
}

type memoryRecord[T any] struct {
	snapshot T
	meta     Meta
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{records: map[string]memoryRecord[T]{}}
}

func (s *MemoryStore[T]) Load(_ context.Context, key string) (T, Meta, bool, error) {
	var zero T
	if key == "" {
		return zero, Meta{}, false, ErrKeyRequired
	}

	s.mu.RLock()
	record, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return zero, Meta{}, false, nil
	}
	return record.snapshot, cloneMeta(record.meta), true, nil
}

func (s *MemoryStore[T]) Save(_ context.Context, key string, snapshot T, meta Meta) (Meta, error) {
	if key == "" {
		return Meta{}, ErrKeyRequired
	}

	s.mu.Lock()
	s.records[key] = memoryRecord[T]{snapshot: snapshot, meta: cloneMeta(meta)}
	s.mu.Unlock()
	return cloneMeta(meta), nil
}

func (s *MemoryStore[T]) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}

	s.mu.Lock()
	delete(s.records, key)
	s.mu.Unlock()
	return nil
}
