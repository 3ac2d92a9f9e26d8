package policy

import "errors"

// Sentinel errors for policy execution.
var (
	// ErrCircuitOpen is returned when the circuit breaker rejects a call
	// without it reaching the transport.
	ErrCircuitOpen = errors.New("policy: circuit breaker is open")

	// ErrTimeout is returned when a single attempt exceeds its deadline.
	ErrTimeout = errors.New("policy: attempt timed out")

	// ErrInvalidConfig is wrapped by every configuration validation error.
	ErrInvalidConfig = errors.New("policy: invalid configuration")
)
