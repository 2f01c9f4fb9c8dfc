package service

import (
	"context"
	"sync"
	"time"
)

// MenuCacheStore holds rendered public menus keyed by the restaurant's
// public ID. Entries are invalidated whenever the underlying menu mutates.
type MenuCacheStore interface {
	Get(ctx context.Context, publicID string) ([]byte, bool, error)
	Set(ctx context.Context, publicID string, payload []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, publicID string) error
}

type NoopMenuCacheStore struct{}

func NewNoopMenuCacheStore() *NoopMenuCacheStore { return &NoopMenuCacheStore{} }

func (s *NoopMenuCacheStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopMenuCacheStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopMenuCacheStore) Invalidate(context.Context, string) error { return nil }

type menuCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryMenuCacheStore struct {
	mu      sync.RWMutex
	entries map[string]menuCacheEntry
}

func NewInMemoryMenuCacheStore() *InMemoryMenuCacheStore {
	return &InMemoryMenuCacheStore{entries: make(map[string]menuCacheEntry)}
}

func (s *InMemoryMenuCacheStore) Get(_ context.Context, publicID string) ([]byte, bool, error) {
	now := time.Now().UTC()
	s.mu.RLock()
	entry, ok := s.entries[publicID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, publicID)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryMenuCacheStore) Set(_ context.Context, publicID string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[publicID] = menuCacheEntry{
		payload:   append([]byte(nil), payload...),
		expiresAt: time.Now().UTC().Add(ttl),
	}
	return nil
}

func (s *InMemoryMenuCacheStore) Invalidate(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, publicID)
	return nil
}
