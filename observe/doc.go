// Package observe provides observability primitives for endpoint calls.
//
// It is a pure instrumentation library: no transport, no policy decisions,
// no I/O beyond exporter setup. The endpoint client wires a Logger, a
// Tracer, and CallMetrics into its call path; nothing in the call path
// depends on any of them succeeding.
package observe
