package session

import (
	"context"
	"sync"
)

// MemoryCache is an in-memory Cache implementation for tests and local usage.
type MemoryCache[S any] struct {
	mu     sync.RWMutex
	values map[string]S
}

func NewMemoryCache[S any]() *MemoryCache[S] {
	return &MemoryCache[S]{
		values: make(map[string]S),
	}
}

func (m *MemoryCache[S]) Set(ctx context.Context, key string, val S) error {
	m.mu.Lock()
	m.values[key] = val
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Get(ctx context.Context, key string) (S, bool, error) {
	m.mu.RLock()
	val, ok := m.values[key]
	m.mu.RUnlock()
	if !ok {
		var zero S
		return zero, false, nil
	}
	return val, true, nil
}

func (m *MemoryCache[S]) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.values, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryCache[S]) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	_, ok := m.values[key]
	m.mu.RUnlock()
	return ok, nil
}

var _ Cache[string] = (*MemoryCache[string])(nil)
