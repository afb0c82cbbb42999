package observe

import (
	"context"
	"time"
)

// ProbeFunc performs one upstream probe and reports the status it observed.
// Status is 0 when no response was received.
type ProbeFunc func(ctx context.Context, meta ProbeMeta) (int, error)

// Middleware wraps probes with tracing, metrics and logging.
//
// Contract:
//   - Concurrency: Wrap returns a ProbeFunc safe for concurrent use.
//   - Context: the span context is passed to the wrapped function.
//   - Errors: errors from the wrapped function are recorded and returned unchanged.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NopMiddleware returns a Middleware that only calls through.
func NopMiddleware() *Middleware {
	return NewMiddleware(nil, nil, nil)
}

// Logger returns the logger used for probe entries.
func (m *Middleware) Logger() Logger {
	return m.logger
}

// Wrap wraps a ProbeFunc with tracing, metrics and logging.
func (m *Middleware) Wrap(fn ProbeFunc) ProbeFunc {
	return func(ctx context.Context, meta ProbeMeta) (int, error) {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		status, err := fn(ctx, meta)

		duration := time.Since(start)
		m.tracer.EndSpan(span, status, err)
		m.metrics.RecordProbe(ctx, meta, status, duration, err)

		log := m.logger.WithProduct(meta.Product)
		fields := []Field{
			F("stage", meta.Stage),
			F("url", meta.URL),
			F("status_code", status),
			F("duration_ms", float64(duration.Milliseconds())),
		}
		if err != nil {
			log.Warn(ctx, "probe failed", append(fields, F("error", err))...)
		} else {
			log.Debug(ctx, "probe completed", fields...)
		}

		return status, err
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(newTracer(obs.Tracer()), metrics, obs.Logger()), nil
}
