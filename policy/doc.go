// Package policy implements the fault-tolerance engine for endpoint clients.
//
// Three independent mechanisms can be composed around an outbound call:
//
//   - Circuit Breaker: tracks consecutive failures per endpoint and rejects
//     calls outright while the endpoint is considered broken.
//
//   - Retry: re-invokes a failed attempt up to a configured number of times
//     with a constant or exponential delay schedule.
//
//   - Timeout: bounds each individual attempt to a maximum duration.
//
// # Composition
//
// Build assembles whichever mechanisms a Config enables into an immutable
// Pipeline. The nesting order is fixed: the circuit breaker's admission
// check runs first, the retry loop governs how many attempts are made, and
// the timeout bounds each individual attempt. The breaker records the
// outcome of every attempt, not just the final one, so a call that burns
// through its whole retry budget against a failing endpoint moves the
// breaker toward Open that much faster.
//
// A Pipeline never changes after Build returns. Callers that allow runtime
// reconfiguration build a fresh Pipeline and swap the reference; breaker
// state lives in the Breaker, not the Pipeline, and survives the swap.
//
// # Failure classification
//
// Retry and the circuit breaker share one classifier: any transport error,
// cancellation or timeout, and HTTP status 5xx or 408 count as failures.
// A breaker-open rejection is not a transport outcome and is never counted
// or retried.
//
// Basic usage:
//
//	cfg := policy.DefaultConfig()
//	cfg.RetryEnabled = true
//	cfg.CircuitBreakerEnabled = true
//
//	br := policy.NewBreaker(cfg.FailureThreshold, cfg.BreakDuration)
//	p := policy.Build(cfg, br)
//
//	err := p.Execute(ctx, func(ctx context.Context) error {
//	    return callRemote(ctx)
//	})
package policy
