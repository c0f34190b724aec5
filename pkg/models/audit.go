package models

import "time"

// LogRecord is one line of the interaction log: a request/response pair
// with its cache and gate outcomes. Records are append-only; nothing in
// the system updates or deletes them.
type LogRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
	Task         TaskKind  `json:"task"`
	ModelID      string    `json:"model_id"`
	Fingerprint  string    `json:"fingerprint"`
	InputPreview string    `json:"input_preview"`
	ResultText   string    `json:"result_text,omitempty"`
	Confidence   float64   `json:"confidence"`
	CacheHit     bool      `json:"cache_hit"`
	Accepted     bool      `json:"accepted"`
	Error        string    `json:"error,omitempty"`
	Incomplete   bool      `json:"incomplete,omitempty"`
}

// LogStat holds aggregate interaction counts for a task/day combination.
type LogStat struct {
	Task     TaskKind
	Day      string
	Count    int64
	Hits     int64
	Accepted int64
}
