package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/healthops/health"
)

// Metrics records health check runs.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCheck records one check run with its status and duration.
	RecordCheck(ctx context.Context, meta CheckMeta, status health.Status, duration time.Duration)
}

type metricsImpl struct {
	meter          metric.Meter
	totalCount     metric.Int64Counter
	unhealthyCount metric.Int64Counter
	durationHist   metric.Float64Histogram
}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"health.check.total",
		metric.WithDescription("Total number of health check runs"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	unhealthyCount, err := meter.Int64Counter(
		"health.check.unhealthy",
		metric.WithDescription("Number of health check runs that reported unhealthy"),
		metric.WithUnit("{check}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"health.check.duration_ms",
		metric.WithDescription("Health check duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:          meter,
		totalCount:     totalCount,
		unhealthyCount: unhealthyCount,
		durationHist:   durationHist,
	}, nil
}

// RecordCheck records metrics for a check run.
func (m *metricsImpl) RecordCheck(ctx context.Context, meta CheckMeta, status health.Status, duration time.Duration) {
	attrs := []attribute.KeyValue{
		attribute.String("check.id", meta.CheckID()),
		attribute.String("check.name", meta.Name),
	}
	if meta.Endpoint != "" {
		attrs = append(attrs, attribute.String("check.endpoint", meta.Endpoint))
	}

	byCheck := metric.WithAttributes(attrs...)
	byStatus := metric.WithAttributes(append(attrs, attribute.String("health.status", status.String()))...)

	m.totalCount.Add(ctx, 1, byStatus)
	if status == health.StatusUnhealthy {
		m.unhealthyCount.Add(ctx, 1, byCheck)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, byCheck)
}

type noopMetrics struct{}

func (m *noopMetrics) RecordCheck(context.Context, CheckMeta, health.Status, time.Duration) {}
