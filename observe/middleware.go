package observe

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// Middleware wraps health checks with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: wrapped checkers are safe for concurrent use if the inner checker is.
//   - Context: the check runs under the span's context.
//   - Errors: results pass through unchanged; panics are recorded and re-raised.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// Wrap wraps a checker with tracing, metrics, and logging.
func (m *Middleware) Wrap(meta CheckMeta, checker health.Checker) health.Checker {
	return health.CheckerFunc(func(ctx context.Context) health.Result {
		ctx, span := m.tracer.StartSpan(ctx, meta)
		start := time.Now()

		defer func() {
			if v := recover(); v != nil {
				failed := health.Unhealthy("check panicked", fmt.Errorf("panic: %v", v))
				m.tracer.EndSpan(span, failed)
				m.metrics.RecordCheck(ctx, meta, failed.Status, time.Since(start))
				m.logger.WithCheck(meta).Error(ctx, "health check panicked", Field{Key: "panic", Value: fmt.Sprint(v)})
				panic(v)
			}
		}()

		result := checker.Check(ctx)
		duration := time.Since(start)

		m.tracer.EndSpan(span, result)
		m.metrics.RecordCheck(ctx, meta, result.Status, duration)
		m.log(ctx, meta, result, duration)

		return result
	})
}

// Instrument returns a copy of regs with every checker wrapped. endpoint
// is recorded on each check's telemetry and may be empty.
func (m *Middleware) Instrument(endpoint string, regs []health.Registration) []health.Registration {
	out := make([]health.Registration, len(regs))
	for i, reg := range regs {
		meta := CheckMeta{Name: reg.Name, Endpoint: endpoint, Tags: reg.Tags}
		reg.Checker = m.Wrap(meta, reg.Checker)
		out[i] = reg
	}
	return out
}

// Executor returns a health.Executor that instruments every registration
// before handing it to next.
func (m *Middleware) Executor(endpoint string, next health.Executor) health.Executor {
	return instrumentedExecutor{mw: m, endpoint: endpoint, next: next}
}

type instrumentedExecutor struct {
	mw       *Middleware
	endpoint string
	next     health.Executor
}

func (e instrumentedExecutor) CheckHealth(ctx context.Context, regs []health.Registration) health.Report {
	return e.next.CheckHealth(ctx, e.mw.Instrument(e.endpoint, regs))
}

func (m *Middleware) log(ctx context.Context, meta CheckMeta, result health.Result, duration time.Duration) {
	logger := m.logger.WithCheck(meta)
	fields := []Field{
		{Key: "status", Value: result.Status.String()},
		{Key: "duration_ms", Value: float64(duration.Milliseconds())},
	}
	if result.Message != "" {
		fields = append(fields, Field{Key: "result", Value: result.Message})
	}

	switch result.Status {
	case health.StatusHealthy:
		logger.Debug(ctx, "health check passed", fields...)
	case health.StatusDegraded:
		logger.Warn(ctx, "health check degraded", fields...)
	default:
		fields = append(fields, Field{Key: "error", Value: resultError(result).Error()})
		logger.Error(ctx, "health check failed", fields...)
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

// NoopMiddleware returns a Middleware that records nothing.
func NoopMiddleware() *Middleware {
	return NewMiddleware(newNoopTracer(), &noopMetrics{}, noopLogger{})
}
