package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tbourn/go-shopify-slack-notifier/internal/domain"
)

// ErrNoOrderKey is returned when a mapping carries no usable order key.
var ErrNoOrderKey = errors.New("mapping has no canonical order key")

// Memory is the default in-memory Store. Entries live for the process
// lifetime; after a restart the thread locator re-discovers mappings from
// channel history on the next event for each order.
//
// Safe for concurrent use.
type Memory struct {
	mu sync.RWMutex
	m  map[string]*domain.ThreadMapping
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]*domain.ThreadMapping)}
}

// Get returns a copy of the mapping for orderKey, or (nil, nil) on miss.
func (s *Memory) Get(_ context.Context, orderKey string) (*domain.ThreadMapping, error) {
	key := domain.CanonicalOrderKey(orderKey)
	if key == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if m, ok := s.m[key]; ok {
		return m.Clone(), nil
	}
	return nil, nil
}

// Put upserts m under its canonical order key with merge semantics.
func (s *Memory) Put(_ context.Context, m *domain.ThreadMapping) error {
	key := domain.CanonicalOrderKey(m.OrderKey)
	if key == "" {
		return ErrNoOrderKey
	}
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.m[key]; ok {
		merged := merge(existing, m)
		merged.UpdatedAt = now
		s.m[key] = merged
		return nil
	}
	cp := m.Clone()
	cp.OrderKey = key
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.m[key] = cp
	return nil
}

// Clear removes the mapping for orderKey, if any.
func (s *Memory) Clear(_ context.Context, orderKey string) error {
	key := domain.CanonicalOrderKey(orderKey)
	if key == "" {
		return nil
	}
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of tracked orders (used by tests and health
// reporting).
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
