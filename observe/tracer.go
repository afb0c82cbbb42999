package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Probe stages.
const (
	StageProducts     = "products"
	StageProduct      = "product"
	StageEditions     = "editions"
	StageEdition      = "edition"
	StagePublishedURL = "published_url"
)

// ProbeMeta describes one upstream GET for telemetry purposes.
type ProbeMeta struct {
	Stage   string // one of the Stage* constants (required)
	Product string // product key; slug or URL (optional)
	URL     string // requested URL
}

// SpanName returns the deterministic span name for this probe.
// Format: ltdstatus.probe.<stage>
func (m ProbeMeta) SpanName() string {
	return "ltdstatus.probe." + m.Stage
}

// Tracer wraps OpenTelemetry tracing with probe-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a probe.
	StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span)

	// EndSpan ends the span, recording the observed status and any error.
	// A status of 0 means no response was received.
	EndSpan(span trace.Span, status int, err error)
}

type tracerImpl struct {
	tracer trace.Tracer
}

func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartSpan starts a new client span with probe metadata as attributes.
func (t *tracerImpl) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("probe.stage", meta.Stage),
		attribute.String("url.full", meta.URL),
		attribute.Bool("probe.error", false),
	}
	if meta.Product != "" {
		attrs = append(attrs, attribute.String("probe.product", meta.Product))
	}

	return t.tracer.Start(ctx, meta.SpanName(),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// EndSpan ends the span and records the error status if present.
func (t *tracerImpl) EndSpan(span trace.Span, status int, err error) {
	if status > 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("probe.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, meta ProbeMeta) (context.Context, trace.Span) {
	return t.noop.Start(ctx, meta.SpanName())
}

func (t *noopTracer) EndSpan(span trace.Span, status int, err error) {
	span.End()
}
