package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrCacheMiss indicates the requested key was not found or was stale.
var ErrCacheMiss = errors.New("cache miss")

// Store is a cache backend. Implementations must be safe for concurrent
// use; the read-check-then-write discipline per key is best effort, not
// strict single-flight.
type Store interface {
	// Name identifies the backend in logs and metrics.
	Name() string

	// Get returns the live entry for key, or ErrCacheMiss when the key
	// is absent or older than ttl.
	Get(ctx context.Context, key Key, ttl time.Duration) (*Entry, error)

	// Set stores an entry. The backend may expire it on its own after
	// ttl; the cache re-checks age on access regardless.
	Set(ctx context.Context, key Key, entry *Entry, ttl time.Duration) error

	// Sweep discards entries older than ttl. Backends with native
	// expiry may make this a no-op.
	Sweep(ctx context.Context, ttl time.Duration) error
}

// MemoryStore is the default in-process backend. Eviction is lazy: stale
// entries are dropped when touched by Get or Sweep, never by a
// background goroutine.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemoryStore creates an empty in-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
	}
}

// Name implements Store.
func (s *MemoryStore) Name() string { return "memory" }

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key Key, ttl time.Duration) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key.String()]
	if !ok {
		return nil, ErrCacheMiss
	}
	if entry.IsStale(ttl) {
		delete(s.entries, key.String())
		return nil, ErrCacheMiss
	}
	return entry, nil
}

// Set implements Store.
func (s *MemoryStore) Set(_ context.Context, key Key, entry *Entry, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key.String()] = entry
	return nil
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(_ context.Context, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, entry := range s.entries {
		if entry.IsStale(ttl) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Len returns the number of entries currently held, stale or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
