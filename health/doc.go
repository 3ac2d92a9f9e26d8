// Package health defines a minimal health-reporting contract for endpoint
// clients.
//
// An endpoint client reports health derived from its circuit breaker
// state: closed is healthy, half-open is degraded (probing recovery), open
// is unhealthy. Consumers aggregate Checkers however their service
// framework expects; this package deliberately ships no HTTP surface.
package health
