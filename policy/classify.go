package policy

import (
	"errors"
	"net/http"
	"strconv"
)

// FailureStatus reports whether an HTTP status code counts as a failure
// for retry and circuit-breaker purposes. Failures are every 5xx plus
// 408 Request Timeout; everything else, including other 4xx codes, is
// treated as a completed call.
func FailureStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusRequestTimeout
}

// StatusError is the outcome of an attempt that completed at the HTTP
// level but carried a failure-classified status code.
type StatusError struct {
	StatusCode int
	Status     string
}

// Error returns a human-readable description of the status outcome.
func (e *StatusError) Error() string {
	if e.Status != "" {
		return "policy: http status " + e.Status
	}
	return "policy: http status " + strconv.Itoa(e.StatusCode)
}

// IsFailure is the shared failure classifier. Transport errors,
// cancellations, timeouts, and failure-classified status codes all count.
// A nil error and a breaker-open rejection do not: the latter is the
// policy layer talking, not the endpoint.
func IsFailure(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return FailureStatus(se.StatusCode)
	}
	return true
}
