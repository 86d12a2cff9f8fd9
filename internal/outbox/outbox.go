// Package outbox stores domain events on the device and delivers them to a
// publisher in the background, retrying with backoff and parking events that
// keep failing in a dead-letter table.
package outbox

import (
	"encoding/json"
	"time"
)

const (
	StatusQueued     = "queued"
	StatusProcessing = "processing"
	StatusRetry      = "retry"
	StatusDone       = "done"
	StatusFailed     = "failed"

	DefaultMaxAttempts = 5
)

// Record is one stored event and its delivery state.
type Record struct {
	ID          int64           `json:"id"`
	EventID     string          `json:"event_id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}

// BackoffDuration returns exponential backoff duration for attempt n
func BackoffDuration(attempt int) time.Duration {
	if attempt <= 0 {
		return time.Second
	}
	d := time.Duration(1<<uint(min(attempt, 16))) * time.Second
	if limit := 5 * time.Minute; d > limit {
		return limit
	}
	return d
}
