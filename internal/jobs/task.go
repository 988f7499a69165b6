package jobs

import (
	"context"
	"time"
)

// Task describes one registered task type. The same definition backs both
// the synchronous endpoint and queued execution, so the retry contract is
// identical in both paths.
type Task struct {
	// Name is the task's route segment, e.g. "create-learning-path".
	Name string

	// NewPayload returns a pointer to a fresh payload struct for JSON
	// decoding and validation.
	NewPayload func() any

	// Run executes one attempt from scratch. The payload is the value
	// produced by NewPayload. Run must be idempotent across attempts:
	// a retried attempt starts with no state from the failed one.
	Run func(ctx context.Context, payload any) (any, error)

	// MaxAttempts is the attempt ceiling, including the first attempt.
	// Zero means DefaultMaxAttempts.
	MaxAttempts int

	// RetryDelay is the floor wait between attempts.
	RetryDelay time.Duration

	// Timeout bounds a single attempt. Zero means no per-attempt bound.
	Timeout time.Duration
}

// DefaultMaxAttempts is the attempt ceiling when a task declares none.
const DefaultMaxAttempts = 3

func (t Task) maxAttempts() int {
	if t.MaxAttempts > 0 {
		return t.MaxAttempts
	}
	return DefaultMaxAttempts
}
