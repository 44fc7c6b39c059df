package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used by tests and by callers that
// want caching semantics without touching the filesystem. Entries share
// the reader-supplied TTL model of FileStore.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

// Read implements Store.
func (s *MemoryStore) Read(_ context.Context, key string, ttl time.Duration) (*Entry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrCacheMiss
	}
	if entry.Expired(ttl) {
		s.mu.Lock()
		// Re-check under the write lock; a fresher write may have landed.
		if e, ok := s.entries[key]; ok && e.Expired(ttl) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, ErrCacheMiss
	}
	return entry, nil
}

// Write implements Store.
func (s *MemoryStore) Write(_ context.Context, key string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = newEntry(data)
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	s.entries = make(map[string]*Entry)
	return n, nil
}
