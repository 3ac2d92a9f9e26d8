package policy

import (
	"context"
	"errors"
	"math"
	"time"
)

// RetryOption configures a Retry.
type RetryOption func(*Retry)

// WithRetryIf overrides the retryable classifier. Default: IsFailure.
func WithRetryIf(fn func(error) bool) RetryOption {
	return func(r *Retry) {
		r.retryIf = fn
	}
}

// WithRetryNotify registers a callback invoked before each retry wait,
// with the 1-indexed retry number, the error that triggered it, and the
// delay about to be observed.
func WithRetryNotify(fn func(retry int, err error, delay time.Duration)) RetryOption {
	return func(r *Retry) {
		r.onRetry = fn
	}
}

// Retry re-invokes a failed attempt up to a fixed number of times.
//
// The delay schedule is deterministic: with exponential backoff the
// 1-indexed retry i waits 2^(i-1) times the base delay, otherwise every
// retry waits the base delay. There is no jitter; the schedule is part of
// the configuration contract.
type Retry struct {
	count       int
	delay       time.Duration
	exponential bool
	retryIf     func(error) bool
	onRetry     func(retry int, err error, delay time.Duration)
}

// NewRetry creates a retry executor performing up to count retries after
// the initial attempt. A negative count is treated as zero.
func NewRetry(count int, delay time.Duration, exponential bool, opts ...RetryOption) *Retry {
	if count < 0 {
		count = 0
	}
	if delay < 0 {
		delay = 0
	}

	r := &Retry{
		count:       count,
		delay:       delay,
		exponential: exponential,
		retryIf:     IsFailure,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs the operation, retrying failure-classified outcomes until
// the retry budget is exhausted. The last observed error is returned.
// A cancelled context stops the loop immediately: no further attempts are
// issued and no delay is waited out.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error) error {
	err := op(ctx)

	for retry := 1; retry <= r.count; retry++ {
		if err == nil || !r.retryIf(err) {
			return err
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return err
		}

		delay := r.delayFor(retry)
		if r.onRetry != nil {
			r.onRetry(retry, err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		err = op(ctx)
	}

	return err
}

// Schedule returns the full delay sequence, one entry per retry.
func (r *Retry) Schedule() []time.Duration {
	s := make([]time.Duration, r.count)
	for i := range s {
		s[i] = r.delayFor(i + 1)
	}
	return s
}

func (r *Retry) delayFor(retry int) time.Duration {
	if !r.exponential {
		return r.delay
	}
	return time.Duration(float64(r.delay) * math.Pow(2, float64(retry-1)))
}
