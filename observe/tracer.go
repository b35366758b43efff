package observe

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/healthops/health"
)

// CheckMeta describes a health check for telemetry purposes.
type CheckMeta struct {
	Name     string   // Check name as registered (required)
	Endpoint string   // Endpoint the check runs under, e.g. "readyz" (optional)
	Tags     []string // Registration tags (optional)
}

// SpanName returns the deterministic span name for this check.
// Format: health.check.<endpoint>.<name> or health.check.<name>
func (m CheckMeta) SpanName() string {
	if m.Endpoint != "" {
		return "health.check." + m.Endpoint + "." + m.Name
	}
	return "health.check." + m.Name
}

// CheckID returns the endpoint-qualified check identifier.
func (m CheckMeta) CheckID() string {
	if m.Endpoint != "" {
		return m.Endpoint + "." + m.Name
	}
	return m.Name
}

// Tracer wraps OpenTelemetry tracing with health-check span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a check run.
	StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the check outcome.
	EndSpan(span trace.Span, result health.Result)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new span with check metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("check.id", meta.CheckID()),
		attribute.String("check.name", meta.Name),
	}
	if meta.Endpoint != "" {
		attrs = append(attrs, attribute.String("check.endpoint", meta.Endpoint))
	}
	if len(meta.Tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("check.tags", meta.Tags))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan records the status and ends the span. Only unhealthy results
// mark the span as failed.
func (t *tracerImpl) EndSpan(span trace.Span, result health.Result) {
	span.SetAttributes(attribute.String("health.status", result.Status.String()))
	if result.Message != "" {
		span.SetAttributes(attribute.String("health.message", result.Message))
	}

	if result.Status == health.StatusUnhealthy {
		err := resultError(result)
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// resultError returns the error behind an unhealthy result.
func resultError(result health.Result) error {
	switch {
	case result.Error != nil:
		return result.Error
	case result.Message != "":
		return errors.New(result.Message)
	default:
		return health.ErrCheckFailed
	}
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta CheckMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, _ health.Result) {
	span.End()
}
