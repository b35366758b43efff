// Package checks provides health checks that ping external dependencies.
//
// Each check reports Unhealthy when the ping fails and Degraded when it
// succeeds slower than the configured threshold. A ping refused by an open
// circuit or a full bulkhead is also Degraded.
// A resilience.Executor may guard the ping with a circuit breaker,
// bulkhead or timeout.
package checks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/resilience"
)

// PingFunc reports whether a dependency is reachable.
type PingFunc func(ctx context.Context) error

type pingOptions struct {
	name          string
	executor      *resilience.Executor
	slowThreshold time.Duration
}

// Option configures a ping check.
type Option func(*pingOptions)

// WithName overrides the check name.
func WithName(name string) Option {
	return func(o *pingOptions) {
		o.name = name
	}
}

// WithExecutor runs every ping through e.
func WithExecutor(e *resilience.Executor) Option {
	return func(o *pingOptions) {
		o.executor = e
	}
}

// WithSlowThreshold reports Degraded when a successful ping takes longer
// than d. Zero disables the threshold.
func WithSlowThreshold(d time.Duration) Option {
	return func(o *pingOptions) {
		o.slowThreshold = d
	}
}

// PingChecker is a named health.Checker backed by a PingFunc.
type PingChecker struct {
	opts pingOptions
	ping PingFunc
}

var _ health.NamedChecker = (*PingChecker)(nil)

// Ping returns a check named name that calls ping.
func Ping(name string, ping PingFunc, opts ...Option) *PingChecker {
	o := pingOptions{name: name}
	for _, opt := range opts {
		opt(&o)
	}
	return &PingChecker{opts: o, ping: ping}
}

// Name returns the check name.
func (c *PingChecker) Name() string {
	return c.opts.name
}

// Check pings the dependency once.
func (c *PingChecker) Check(ctx context.Context) health.Result {
	if c.ping == nil {
		return health.Unhealthy("no client configured", health.ErrInvalidArgument)
	}

	start := time.Now()
	var err error
	if c.opts.executor != nil {
		err = c.opts.executor.Execute(ctx, func(ctx context.Context) error {
			return c.ping(ctx)
		})
	} else {
		err = c.ping(ctx)
	}
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, resilience.ErrCircuitOpen), errors.Is(err, resilience.ErrCircuitIsolated):
		return health.Degraded(c.opts.name + " circuit is open").WithError(err)
	case errors.Is(err, resilience.ErrBulkheadFull):
		return health.Degraded(c.opts.name + " has too many probes in flight").WithError(err)
	case errors.Is(err, resilience.ErrTimeout):
		return health.Unhealthy(c.opts.name+" ping timed out", err)
	case err != nil:
		return health.Unhealthy(fmt.Sprintf("%s ping failed: %v", c.opts.name, err), err)
	}

	details := map[string]any{"latency_ms": float64(elapsed.Microseconds()) / 1000}
	if c.opts.slowThreshold > 0 && elapsed > c.opts.slowThreshold {
		return health.Degraded(fmt.Sprintf("%s responded in %s", c.opts.name, elapsed.Round(time.Millisecond))).WithDetails(details)
	}
	return health.Healthy("").WithDetails(details)
}
