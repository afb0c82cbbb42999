package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records upstream probe metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordProbe records a probe with its status, duration and error.
	RecordProbe(ctx context.Context, meta ProbeMeta, status int, duration time.Duration, err error)
}

type metricsImpl struct {
	totalCount   metric.Int64Counter
	failureCount metric.Int64Counter
	durationHist metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"ltdstatus.probe.total",
		metric.WithDescription("Total number of upstream probes"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	failureCount, err := meter.Int64Counter(
		"ltdstatus.probe.failures",
		metric.WithDescription("Upstream probes that did not yield a usable response"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"ltdstatus.probe.duration_ms",
		metric.WithDescription("Upstream probe duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		totalCount:   totalCount,
		failureCount: failureCount,
		durationHist: durationHist,
	}, nil
}

// RecordProbe records metrics for one probe. Product and URL are not
// attributes; status is 0 when no response was received.
func (m *metricsImpl) RecordProbe(ctx context.Context, meta ProbeMeta, status int, duration time.Duration, err error) {
	opt := metric.WithAttributes(
		attribute.String("probe.stage", meta.Stage),
		attribute.Int("http.response.status_code", status),
	)

	m.totalCount.Add(ctx, 1, opt)
	if err != nil {
		m.failureCount.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Milliseconds()), opt)
}

type noopMetrics struct{}

func (noopMetrics) RecordProbe(ctx context.Context, meta ProbeMeta, status int, duration time.Duration, err error) {
}
