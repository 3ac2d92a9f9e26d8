package policy

import (
	"context"
	"sync"
	"time"
)

// State represents the circuit breaker state.
type State int

const (
	// StateClosed means calls pass through and failures are counted.
	StateClosed State = iota
	// StateOpen means calls are rejected without reaching the transport.
	StateOpen
	// StateHalfOpen means one trial call is allowed through to probe
	// recovery.
	StateHalfOpen
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithStateChange registers a callback invoked on every state transition.
// The callback runs with the breaker's lock held and must return quickly.
func WithStateChange(fn func(from, to State)) BreakerOption {
	return func(b *Breaker) {
		b.onStateChange = fn
	}
}

// WithClassifier overrides the failure classifier. Default: IsFailure.
func WithClassifier(fn func(error) bool) BreakerOption {
	return func(b *Breaker) {
		b.isFailure = fn
	}
}

// Breaker is a three-state circuit breaker for one logical endpoint.
//
// Admission (Allow) and outcome recording (Record) are split so a
// composed pipeline can check admission once per call while recording
// every individual attempt. Execute combines both for standalone use.
type Breaker struct {
	mu            sync.Mutex
	threshold     int
	breakFor      time.Duration
	state         State
	failures      int
	openedAt      time.Time
	trialInFlight bool

	onStateChange func(from, to State)
	isFailure     func(error) bool
	now           func() time.Time
}

// NewBreaker creates a closed breaker. Non-positive parameters fall back
// to DefaultFailureThreshold and DefaultBreakDuration.
func NewBreaker(threshold int, breakFor time.Duration, opts ...BreakerOption) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if breakFor <= 0 {
		breakFor = DefaultBreakDuration
	}

	b := &Breaker{
		threshold: threshold,
		breakFor:  breakFor,
		state:     StateClosed,
		isFailure: IsFailure,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a call may proceed. It returns ErrCircuitOpen
// while the breaker is open, and transitions Open to HalfOpen lazily once
// the break duration has elapsed. In HalfOpen exactly one trial call is
// admitted; concurrent calls are rejected until its outcome is recorded.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentStateLocked() {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		if b.trialInFlight {
			return ErrCircuitOpen
		}
		b.trialInFlight = true
	}
	return nil
}

// Record feeds one attempt outcome into the state machine.
//
// While Closed, a failure increments the consecutive failure count and
// opens the breaker exactly when the count reaches the threshold; a
// success resets the count. In HalfOpen a successful trial closes the
// breaker and a failed trial re-opens it for another full break duration.
func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	failed := b.isFailure(err)
	from := b.state

	switch b.state {
	case StateClosed:
		if failed {
			b.failures++
			if b.failures >= b.threshold {
				b.state = StateOpen
				b.openedAt = b.now()
			}
		} else {
			b.failures = 0
		}

	case StateHalfOpen:
		b.trialInFlight = false
		if failed {
			b.state = StateOpen
			b.openedAt = b.now()
		} else {
			b.state = StateClosed
			b.failures = 0
		}

	case StateOpen:
		// An attempt admitted earlier finished after the breaker opened
		// through another call's failures. Its outcome is stale.
	}

	if from != b.state && b.onStateChange != nil {
		b.onStateChange(from, b.state)
	}
}

// Execute runs the operation through the breaker: admission check, the
// operation itself, outcome recording. The admission check is skipped if
// ctx is already cancelled.
func (b *Breaker) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.Allow(); err != nil {
		return err
	}

	err := op(ctx)
	b.Record(err)
	return err
}

// Configure replaces the threshold and break duration without touching
// the current state or failure count, so reconfiguration at runtime does
// not drop in-flight breaker history. Non-positive values are ignored.
func (b *Breaker) Configure(threshold int, breakFor time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if threshold > 0 {
		b.threshold = threshold
	}
	if breakFor > 0 {
		b.breakFor = breakFor
	}
}

// State returns the current state, applying the lazy Open to HalfOpen
// transition if the break duration has elapsed.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentStateLocked()
}

// Reset forces the breaker back to Closed with a zero failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	from := b.state
	b.state = StateClosed
	b.failures = 0
	b.trialInFlight = false

	if from != StateClosed && b.onStateChange != nil {
		b.onStateChange(from, StateClosed)
	}
}

func (b *Breaker) currentStateLocked() State {
	if b.state == StateOpen && b.now().Sub(b.openedAt) >= b.breakFor {
		b.state = StateHalfOpen
		b.trialInFlight = false
		if b.onStateChange != nil {
			b.onStateChange(StateOpen, StateHalfOpen)
		}
	}
	return b.state
}

// BreakerSnapshot is a point-in-time view of breaker state.
type BreakerSnapshot struct {
	State               State
	ConsecutiveFailures int
	OpenedAt            time.Time
}

// Snapshot returns the current breaker statistics.
func (b *Breaker) Snapshot() BreakerSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BreakerSnapshot{
		State:               b.currentStateLocked(),
		ConsecutiveFailures: b.failures,
		OpenedAt:            b.openedAt,
	}
}
