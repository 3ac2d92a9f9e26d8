package policy

import (
	"context"
	"time"
)

// Timeout bounds a single attempt to a maximum duration. The deadline is
// per attempt, not per call: under retry each attempt gets a fresh one.
type Timeout struct {
	limit time.Duration
}

// NewTimeout creates a timeout guard. A non-positive limit falls back to
// DefaultTimeout.
func NewTimeout(limit time.Duration) *Timeout {
	if limit <= 0 {
		limit = DefaultTimeout
	}
	return &Timeout{limit: limit}
}

// Limit returns the configured per-attempt deadline.
func (t *Timeout) Limit() time.Duration {
	return t.limit
}

// Execute runs one attempt under the deadline. Expiry of the guard's own
// deadline yields ErrTimeout; cancellation arriving from outside yields
// the context's error. Both are failure-classified, but callers can tell
// them apart.
func (t *Timeout) Execute(ctx context.Context, op func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, t.limit)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
