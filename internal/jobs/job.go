// Package jobs coordinates background job execution: a worker pool, a
// SQLite-backed job store, and the retry envelope every task runs in.
package jobs

import (
	"encoding/json"
	"time"
)

// Status is the public job lifecycle state.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"

	// StatusUnknown is reported for identifiers the store has never
	// seen, or whose records have been expired.
	StatusUnknown Status = "unknown"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is one queued unit of work. Status transitions are owned by the
// manager; the result is written once, at completion or failure, and is
// immutable afterwards.
type Job struct {
	ID       string          `json:"job_id"`
	Task     string          `json:"task"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	Status   Status          `json:"status"`
	Result   json.RawMessage `json:"result"`
	Error    string          `json:"error,omitempty"`
	Attempts int             `json:"attempts"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}
