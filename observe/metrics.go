package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CallMetrics records endpoint-call telemetry.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic; recording is best-effort.
type CallMetrics interface {
	// RecordCall records one logical call with its duration, attempt
	// count, and final error status.
	RecordCall(ctx context.Context, meta EndpointMeta, duration time.Duration, attempts int, err error)

	// RecordRetry records one retry wait.
	RecordRetry(ctx context.Context, meta EndpointMeta)

	// RecordBreakerTransition records a circuit breaker state change.
	RecordBreakerTransition(ctx context.Context, meta EndpointMeta, from, to string)

	// RecordTimeout records one attempt that hit its deadline.
	RecordTimeout(ctx context.Context, meta EndpointMeta)
}

type callMetrics struct {
	totalCount    metric.Int64Counter
	errorCount    metric.Int64Counter
	retryCount    metric.Int64Counter
	breakerCount  metric.Int64Counter
	timeoutCount  metric.Int64Counter
	attemptsHist  metric.Int64Histogram
	durationHist  metric.Float64Histogram
}

// NewCallMetrics creates CallMetrics on the given meter.
func NewCallMetrics(meter metric.Meter) (CallMetrics, error) {
	totalCount, err := meter.Int64Counter(
		"endpoint.call.total",
		metric.WithDescription("Total number of endpoint calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"endpoint.call.errors",
		metric.WithDescription("Total number of failed endpoint calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	retryCount, err := meter.Int64Counter(
		"endpoint.retry.total",
		metric.WithDescription("Total number of retry waits"),
		metric.WithUnit("{retry}"),
	)
	if err != nil {
		return nil, err
	}

	breakerCount, err := meter.Int64Counter(
		"endpoint.breaker.transitions",
		metric.WithDescription("Total number of circuit breaker state transitions"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, err
	}

	timeoutCount, err := meter.Int64Counter(
		"endpoint.timeout.total",
		metric.WithDescription("Total number of attempts that exceeded their deadline"),
		metric.WithUnit("{timeout}"),
	)
	if err != nil {
		return nil, err
	}

	attemptsHist, err := meter.Int64Histogram(
		"endpoint.call.attempts",
		metric.WithDescription("Transport attempts per logical call"),
		metric.WithUnit("{attempt}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"endpoint.call.duration_ms",
		metric.WithDescription("Endpoint call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &callMetrics{
		totalCount:   totalCount,
		errorCount:   errorCount,
		retryCount:   retryCount,
		breakerCount: breakerCount,
		timeoutCount: timeoutCount,
		attemptsHist: attemptsHist,
		durationHist: durationHist,
	}, nil
}

func endpointAttrs(meta EndpointMeta) metric.MeasurementOption {
	attrs := []attribute.KeyValue{
		attribute.String("endpoint.name", meta.Name),
	}
	if meta.Operation != "" {
		attrs = append(attrs, attribute.String("endpoint.operation", meta.Operation))
	}
	return metric.WithAttributes(attrs...)
}

func (m *callMetrics) RecordCall(ctx context.Context, meta EndpointMeta, duration time.Duration, attempts int, err error) {
	opt := endpointAttrs(meta)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}
	m.attemptsHist.Record(ctx, int64(attempts), opt)
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

func (m *callMetrics) RecordRetry(ctx context.Context, meta EndpointMeta) {
	m.retryCount.Add(ctx, 1, endpointAttrs(meta))
}

func (m *callMetrics) RecordBreakerTransition(ctx context.Context, meta EndpointMeta, from, to string) {
	m.breakerCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint.name", meta.Name),
		attribute.String("from", from),
		attribute.String("to", to),
	))
}

func (m *callMetrics) RecordTimeout(ctx context.Context, meta EndpointMeta) {
	m.timeoutCount.Add(ctx, 1, endpointAttrs(meta))
}

// NopCallMetrics records nothing.
type NopCallMetrics struct{}

func (NopCallMetrics) RecordCall(ctx context.Context, meta EndpointMeta, duration time.Duration, attempts int, err error) {
}
func (NopCallMetrics) RecordRetry(ctx context.Context, meta EndpointMeta) {}
func (NopCallMetrics) RecordBreakerTransition(ctx context.Context, meta EndpointMeta, from, to string) {
}
func (NopCallMetrics) RecordTimeout(ctx context.Context, meta EndpointMeta) {}
