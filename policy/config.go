package policy

import (
	"fmt"
	"time"
)

// Defaults applied by DefaultConfig and by the timeout clamp in the
// endpoint client.
const (
	DefaultRetryCount       = 3
	DefaultRetryDelay       = 2 * time.Second
	DefaultFailureThreshold = 5
	DefaultBreakDuration    = 30 * time.Second
	DefaultTimeout          = 30 * time.Second
)

// Config holds the resilience settings for one endpoint client.
//
// Every mechanism has its own enabled flag; the numeric fields of a
// disabled mechanism are inert but retained, so toggling a mechanism off
// and on again restores its last-configured values.
type Config struct {
	// RetryEnabled turns the retry executor on.
	RetryEnabled bool

	// RetryCount is the number of retries after the initial attempt.
	// Zero is valid and degenerates to a single attempt.
	RetryCount int

	// RetryDelay is the base delay between attempts.
	RetryDelay time.Duration

	// ExponentialBackoff doubles the delay for each successive retry.
	// When false every retry waits RetryDelay.
	ExponentialBackoff bool

	// CircuitBreakerEnabled turns the circuit breaker stage on.
	CircuitBreakerEnabled bool

	// FailureThreshold is the number of consecutive failures that opens
	// the breaker.
	FailureThreshold int

	// BreakDuration is how long the breaker stays open before admitting
	// a trial call.
	BreakDuration time.Duration

	// TimeoutEnabled turns the per-attempt timeout on.
	TimeoutEnabled bool

	// Timeout is the deadline for a single attempt, not the whole call.
	Timeout time.Duration
}

// DefaultConfig returns a Config with every mechanism disabled and the
// default parameters in place: 3 retries at 2s with exponential backoff,
// breaker threshold 5 with a 30s break, 30s timeout.
func DefaultConfig() Config {
	return Config{
		RetryCount:         DefaultRetryCount,
		RetryDelay:         DefaultRetryDelay,
		ExponentialBackoff: true,
		FailureThreshold:   DefaultFailureThreshold,
		BreakDuration:      DefaultBreakDuration,
		Timeout:            DefaultTimeout,
	}
}

// Validate checks the numeric parameters. Errors wrap ErrInvalidConfig.
func (c Config) Validate() error {
	if c.RetryCount < 0 {
		return fmt.Errorf("%w: retry count must be >= 0, got %d", ErrInvalidConfig, c.RetryCount)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: retry delay must be >= 0, got %v", ErrInvalidConfig, c.RetryDelay)
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("%w: failure threshold must be > 0, got %d", ErrInvalidConfig, c.FailureThreshold)
	}
	if c.BreakDuration <= 0 {
		return fmt.Errorf("%w: break duration must be > 0, got %v", ErrInvalidConfig, c.BreakDuration)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be > 0, got %v", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
