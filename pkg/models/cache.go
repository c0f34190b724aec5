package models

import "time"

// CacheEntry stores one gated-pipeline result keyed by its request
// fingerprint. Entries are owned by the cache store; callers treat them
// as read-only snapshots.
type CacheEntry struct {
	Fingerprint string          `json:"fingerprint"`
	Result      InferenceResult `json:"result"`
	StoredAt    time.Time       `json:"stored_at"`
	ExpiresAt   time.Time       `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at the given time.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// CacheStats reports cache performance metrics.
type CacheStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
