package observe

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/jonwraymond/healthops/health"
)

func newManualMetrics(t *testing.T) (*sdkmetric.ManualReader, *metricsImpl) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	m, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("failed to create metrics: %v", err)
	}
	return reader, m
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

func sumValue(t *testing.T, m *metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

// TestMetrics_TotalCounterIncrements verifies health.check.total counts every run.
func TestMetrics_TotalCounterIncrements(t *testing.T) {
	reader, m := newManualMetrics(t)
	meta := CheckMeta{Name: "db", Endpoint: "readyz"}

	m.RecordCheck(context.Background(), meta, health.StatusHealthy, 100*time.Millisecond)
	m.RecordCheck(context.Background(), meta, health.StatusDegraded, 100*time.Millisecond)

	found := findMetric(collect(t, reader), "health.check.total")
	if found == nil {
		t.Fatal("health.check.total metric not found")
	}
	if got := sumValue(t, found); got != 2 {
		t.Errorf("expected count 2, got %d", got)
	}
}

// TestMetrics_TotalCounterCarriesStatus verifies each status gets its own series.
func TestMetrics_TotalCounterCarriesStatus(t *testing.T) {
	reader, m := newManualMetrics(t)
	meta := CheckMeta{Name: "db"}

	m.RecordCheck(context.Background(), meta, health.StatusHealthy, time.Millisecond)
	m.RecordCheck(context.Background(), meta, health.StatusUnhealthy, time.Millisecond)

	found := findMetric(collect(t, reader), "health.check.total")
	if found == nil {
		t.Fatal("health.check.total metric not found")
	}

	sum := found.Data.(metricdata.Sum[int64])
	statuses := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, ok := dp.Attributes.Value(attribute.Key("health.status"))
		if !ok {
			t.Fatal("data point missing health.status")
		}
		statuses[v.AsString()] += dp.Value
	}
	if statuses["healthy"] != 1 || statuses["unhealthy"] != 1 {
		t.Errorf("unexpected series %v", statuses)
	}
}

// TestMetrics_UnhealthyCounter verifies only unhealthy runs are counted.
func TestMetrics_UnhealthyCounter(t *testing.T) {
	reader, m := newManualMetrics(t)
	meta := CheckMeta{Name: "db"}

	m.RecordCheck(context.Background(), meta, health.StatusHealthy, time.Millisecond)
	m.RecordCheck(context.Background(), meta, health.StatusDegraded, time.Millisecond)
	m.RecordCheck(context.Background(), meta, health.StatusUnhealthy, time.Millisecond)

	found := findMetric(collect(t, reader), "health.check.unhealthy")
	if found == nil {
		t.Fatal("health.check.unhealthy metric not found")
	}
	if got := sumValue(t, found); got != 1 {
		t.Errorf("expected count 1, got %d", got)
	}
}

// TestMetrics_DurationHistogram verifies the duration is recorded in milliseconds.
func TestMetrics_DurationHistogram(t *testing.T) {
	reader, m := newManualMetrics(t)

	m.RecordCheck(context.Background(), CheckMeta{Name: "db"}, health.StatusHealthy, 250*time.Millisecond)

	found := findMetric(collect(t, reader), "health.check.duration_ms")
	if found == nil {
		t.Fatal("health.check.duration_ms metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) != 1 {
		t.Fatalf("expected 1 data point, got %d", len(hist.DataPoints))
	}
	if hist.DataPoints[0].Sum != 250 {
		t.Errorf("expected sum 250, got %v", hist.DataPoints[0].Sum)
	}
}

// TestMetrics_ConcurrentSafe verifies RecordCheck is safe for concurrent use.
func TestMetrics_ConcurrentSafe(t *testing.T) {
	reader, m := newManualMetrics(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordCheck(context.Background(), CheckMeta{Name: "db"}, health.StatusHealthy, time.Millisecond)
		}()
	}
	wg.Wait()

	found := findMetric(collect(t, reader), "health.check.total")
	if found == nil {
		t.Fatal("health.check.total metric not found")
	}
	if got := sumValue(t, found); got != 50 {
		t.Errorf("expected count 50, got %d", got)
	}
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}
