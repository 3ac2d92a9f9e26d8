package policy

import (
	"context"
	"time"
)

// Operation is one outbound call attempt body: typically a closure around
// the transport invocation.
type Operation func(ctx context.Context) error

// BuildOption configures pipeline assembly.
type BuildOption func(*Pipeline)

// WithRetryObserver registers a callback invoked before each retry wait.
// Intermediate attempt errors are only visible here; the caller sees the
// final outcome.
func WithRetryObserver(fn func(retry int, err error, delay time.Duration)) BuildOption {
	return func(p *Pipeline) {
		p.onRetry = fn
	}
}

// Pipeline is one composed execution chain, derived from a Config at
// build time and immutable afterwards. Swapping configuration means
// building a new Pipeline; calls already dispatched into an old one run
// to completion against it.
//
// Stage order per call:
//
//	breaker admission check
//	  for each attempt (retry loop):
//	    per-attempt timeout
//	      transport operation
//	    breaker records the attempt outcome
//
// The breaker is outermost so an open circuit rejects a call before any
// retry or timeout machinery runs, and the timeout is innermost so each
// attempt gets its own deadline. This is the documented intent of the
// composition; the breaker still sees every attempt because outcome
// recording is decoupled from the admission check.
type Pipeline struct {
	timeout *Timeout
	retry   *Retry
	breaker *Breaker
	onRetry func(retry int, err error, delay time.Duration)
}

// Build assembles a Pipeline from the enabled mechanisms in cfg. The
// breaker stage is included only when cfg enables it and br is non-nil;
// the same Breaker instance may be shared across successive builds so
// its state survives reconfiguration. With nothing enabled the pipeline
// is an identity pass-through.
func Build(cfg Config, br *Breaker, opts ...BuildOption) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}

	if cfg.TimeoutEnabled {
		p.timeout = NewTimeout(cfg.Timeout)
	}
	if cfg.RetryEnabled {
		retryOpts := []RetryOption{}
		if p.onRetry != nil {
			retryOpts = append(retryOpts, WithRetryNotify(p.onRetry))
		}
		p.retry = NewRetry(cfg.RetryCount, cfg.RetryDelay, cfg.ExponentialBackoff, retryOpts...)
	}
	if cfg.CircuitBreakerEnabled {
		p.breaker = br
	}

	return p
}

// Execute runs op through the composed stages. A context cancelled before
// dispatch returns immediately without touching the breaker.
func (p *Pipeline) Execute(ctx context.Context, op Operation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attempt := op
	if p.timeout != nil {
		inner := attempt
		attempt = func(ctx context.Context) error {
			return p.timeout.Execute(ctx, inner)
		}
	}
	if p.breaker != nil {
		inner := attempt
		attempt = func(ctx context.Context) error {
			err := inner(ctx)
			p.breaker.Record(err)
			return err
		}
	}

	if p.breaker != nil {
		if err := p.breaker.Allow(); err != nil {
			return err
		}
	}

	if p.retry != nil {
		return p.retry.Execute(ctx, attempt)
	}
	return attempt(ctx)
}
