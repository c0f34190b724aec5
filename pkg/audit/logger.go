// Package audit keeps the append-only interaction log: one JSON line
// per pipeline call, human-readable, never updated or deleted.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Logger appends interaction records to a line-oriented log file. Each
// record is written as a single JSON line in one Write call under a
// mutex, so concurrent appends never interleave or truncate records.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// New opens (or creates) the log file at path in append mode.
func New(path string) (*Logger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open interaction log: %w", err)
	}
	return &Logger{f: f, path: path}, nil
}

// Append writes one record as a single line. Ordering follows arrival
// at the mutex.
func (l *Logger) Append(record models.LogRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal log record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("append log record: %w", err)
	}
	return nil
}

// Read returns up to limit records in arrival order. Malformed lines are
// skipped; recovery is strictly line-oriented. limit <= 0 reads all.
func (l *Logger) Read(limit int) ([]models.LogRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open interaction log: %w", err)
	}
	defer f.Close()

	var records []models.LogRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec models.LogRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("scan interaction log: %w", err)
	}
	return records, nil
}

// Tail returns the last n records in arrival order.
func (l *Logger) Tail(n int) ([]models.LogRecord, error) {
	records, err := l.Read(0)
	if err != nil {
		return nil, err
	}
	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return records, nil
}

// Stats aggregates record counts by task and day.
func (l *Logger) Stats() ([]models.LogStat, error) {
	records, err := l.Read(0)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*models.LogStat)
	for _, rec := range records {
		day := rec.Timestamp.UTC().Format("2006-01-02")
		key := string(rec.Task) + "|" + day
		stat, ok := byKey[key]
		if !ok {
			stat = &models.LogStat{Task: rec.Task, Day: day}
			byKey[key] = stat
		}
		stat.Count++
		if rec.CacheHit {
			stat.Hits++
		}
		if rec.Accepted {
			stat.Accepted++
		}
	}

	stats := make([]models.LogStat, 0, len(byKey))
	for _, stat := range byKey {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Day != stats[j].Day {
			return stats[i].Day > stats[j].Day
		}
		return stats[i].Task < stats[j].Task
	})
	return stats, nil
}

// Path returns the log file location.
func (l *Logger) Path() string { return l.path }

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}
