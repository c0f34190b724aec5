// Package cache defines the result cache contract shared by the durable
// SQLite store and the in-memory degraded-mode store.
package cache

import (
	"context"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Store maps request fingerprints to prior inference results. Reads fail
// closed: any storage or decode error is reported as a miss, never as an
// error or a partial entry. Writes replace the whole entry.
type Store interface {
	// Get returns the entry for key, or false if absent, expired, or
	// unreadable. Expired entries count as misses.
	Get(ctx context.Context, key string) (*models.CacheEntry, bool)

	// Put stores entry under key, overwriting any previous entry.
	// Last write wins.
	Put(ctx context.Context, key string, entry *models.CacheEntry) error

	// Stats returns entry counts and hit/miss counters.
	Stats() (models.CacheStats, error)

	// Clear removes entries. If expiredOnly is true, only entries past
	// their expiry are removed.
	Clear(expiredOnly bool) error

	// Durable reports whether entries survive a process restart. The
	// in-memory fallback returns false so degraded mode is observable.
	Durable() bool

	Close() error
}
