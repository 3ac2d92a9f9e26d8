package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// EndpointMeta identifies one logical endpoint for telemetry purposes.
type EndpointMeta struct {
	Name      string // endpoint type name (required)
	Operation string // operation or method being called (optional)
	Address   string // resolved base address (optional)
}

// SpanName returns the deterministic span name for a call to this
// endpoint: endpoint.call.<name>.<operation> or endpoint.call.<name>.
func (m EndpointMeta) SpanName() string {
	if m.Operation != "" {
		return "endpoint.call." + m.Name + "." + m.Operation
	}
	return "endpoint.call." + m.Name
}

// Tracer wraps OpenTelemetry tracing with endpoint-call span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for an endpoint call.
	StartSpan(ctx context.Context, meta EndpointMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording any error.
	EndSpan(span trace.Span, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer wraps the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		t = tracenoop.NewTracerProvider().Tracer("noop")
	}
	return &tracerImpl{tracer: t}
}

// NopTracer returns a tracer that records nothing.
func NopTracer() Tracer {
	return &tracerImpl{tracer: tracenoop.NewTracerProvider().Tracer("noop")}
}

func (t *tracerImpl) StartSpan(ctx context.Context, meta EndpointMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("endpoint.name", meta.Name),
	}
	if meta.Operation != "" {
		attrs = append(attrs, attribute.String("endpoint.operation", meta.Operation))
	}
	if meta.Address != "" {
		attrs = append(attrs, attribute.String("endpoint.address", meta.Address))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func (t *tracerImpl) EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
