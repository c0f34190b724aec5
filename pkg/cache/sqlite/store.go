// Package sqlite implements the durable result cache on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Store is a fingerprint-keyed result cache backed by SQLite. Entries
// carry their own expiry; an expired row is treated as a miss and
// deleted on the next lookup.
type Store struct {
	db     *sql.DB
	hits   atomic.Int64
	misses atomic.Int64
}

const createCacheTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	fingerprint  TEXT PRIMARY KEY,
	result_text  TEXT NOT NULL,
	confidence   REAL NOT NULL,
	model        TEXT NOT NULL,
	generated_at DATETIME NOT NULL,
	stored_at    DATETIME NOT NULL,
	expires_at   DATETIME NOT NULL
);
`

// New opens (or creates) the cache database at dbPath.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	if _, err := db.Exec(createCacheTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate cache db: %w", err)
	}

	return &Store{db: db}, nil
}

// Get retrieves the entry for key. It fails closed: storage errors,
// decode errors and expired rows all report a miss.
func (s *Store) Get(ctx context.Context, key string) (*models.CacheEntry, bool) {
	var entry models.CacheEntry
	err := s.db.QueryRowContext(ctx,
		`SELECT fingerprint, result_text, confidence, model, generated_at, stored_at, expires_at
		 FROM cache_entries WHERE fingerprint = ?`, key,
	).Scan(
		&entry.Fingerprint, &entry.Result.Text, &entry.Result.Confidence,
		&entry.Result.ModelID, &entry.Result.GeneratedAt,
		&entry.StoredAt, &entry.ExpiresAt,
	)
	if err != nil {
		s.misses.Add(1)
		return nil, false
	}

	if entry.Expired(time.Now()) {
		// lazy eviction; a concurrent Put simply wins via INSERT OR REPLACE
		_, _ = s.db.ExecContext(ctx,
			`DELETE FROM cache_entries WHERE fingerprint = ? AND expires_at <= ?`,
			key, time.Now().UTC())
		s.misses.Add(1)
		return nil, false
	}

	s.hits.Add(1)
	return &entry, true
}

// Put stores entry under key as a whole-row replace. Last write wins.
func (s *Store) Put(ctx context.Context, key string, entry *models.CacheEntry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries
		 (fingerprint, result_text, confidence, model, generated_at, stored_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		key, entry.Result.Text, entry.Result.Confidence, entry.Result.ModelID,
		entry.Result.GeneratedAt.UTC(), entry.StoredAt.UTC(), entry.ExpiresAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}

// Stats returns cache performance metrics.
func (s *Store) Stats() (models.CacheStats, error) {
	var count int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM cache_entries`).Scan(&count); err != nil {
		return models.CacheStats{}, fmt.Errorf("cache stats: %w", err)
	}
	return models.CacheStats{
		Entries: count,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}, nil
}

// Clear removes cache entries. If expiredOnly is true, only expired
// entries are removed.
func (s *Store) Clear(expiredOnly bool) error {
	var err error
	if expiredOnly {
		_, err = s.db.Exec(`DELETE FROM cache_entries WHERE expires_at <= ?`, time.Now().UTC())
	} else {
		_, err = s.db.Exec(`DELETE FROM cache_entries`)
	}
	if err != nil {
		return fmt.Errorf("cache clear: %w", err)
	}
	return nil
}

// Durable reports true: entries survive process restart.
func (s *Store) Durable() bool { return true }

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
