package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// MemoryStore is the non-durable fallback used when the SQLite store
// cannot be opened. It has the same TTL semantics but loses everything
// on restart; Durable() returns false so callers can surface the
// degradation.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]models.CacheEntry
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]models.CacheEntry)}
}

// Get returns the entry for key if present and unexpired. Expired
// entries are lazily evicted.
func (s *MemoryStore) Get(_ context.Context, key string) (*models.CacheEntry, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		s.misses.Add(1)
		return nil, false
	}
	if entry.Expired(time.Now()) {
		s.mu.Lock()
		// re-check under the write lock; a fresh Put may have raced in
		if cur, still := s.entries[key]; still && cur.Expired(time.Now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		s.misses.Add(1)
		return nil, false
	}

	s.hits.Add(1)
	out := entry
	return &out, true
}

// Put stores a copy of entry under key, replacing any previous entry.
func (s *MemoryStore) Put(_ context.Context, key string, entry *models.CacheEntry) error {
	s.mu.Lock()
	s.entries[key] = *entry
	s.mu.Unlock()
	return nil
}

// Stats returns entry counts and hit/miss counters.
func (s *MemoryStore) Stats() (models.CacheStats, error) {
	s.mu.RLock()
	count := int64(len(s.entries))
	s.mu.RUnlock()
	return models.CacheStats{
		Entries: count,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}, nil
}

// Clear removes entries, or only expired ones when expiredOnly is set.
func (s *MemoryStore) Clear(expiredOnly bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !expiredOnly {
		s.entries = make(map[string]models.CacheEntry)
		return nil
	}
	now := time.Now()
	for k, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, k)
		}
	}
	return nil
}

// Durable reports false: this store does not survive restart.
func (s *MemoryStore) Durable() bool { return false }

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
