package resilience

import (
	"context"
	"time"
)

// Executor runs operations through a bulkhead, a circuit breaker and a
// timeout, outermost first. Any of them may be absent.
//
// A timeout counts as a breaker failure; a bulkhead rejection does not
// reach the breaker.
type Executor struct {
	bulkhead *Bulkhead
	breaker  *CircuitBreaker
	timeout  time.Duration
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// NewExecutor returns an Executor with the given guards.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithCircuitBreaker guards calls with cb.
func WithCircuitBreaker(cb *CircuitBreaker) ExecutorOption {
	return func(e *Executor) { e.breaker = cb }
}

// WithBulkhead guards calls with b.
func WithBulkhead(b *Bulkhead) ExecutorOption {
	return func(e *Executor) { e.bulkhead = b }
}

// WithTimeout bounds each call to d.
func WithTimeout(d time.Duration) ExecutorOption {
	return func(e *Executor) { e.timeout = d }
}

// CircuitBreaker returns the configured breaker, or nil.
func (e *Executor) CircuitBreaker() *CircuitBreaker { return e.breaker }

// Bulkhead returns the configured bulkhead, or nil.
func (e *Executor) Bulkhead() *Bulkhead { return e.bulkhead }

// Execute runs op through the configured guards.
func (e *Executor) Execute(ctx context.Context, op func(context.Context) error) error {
	call := op
	if e.timeout > 0 {
		call = bounded(e.timeout, call)
	}
	if e.breaker != nil {
		call = through(e.breaker.Execute, call)
	}
	if e.bulkhead != nil {
		call = through(e.bulkhead.Execute, call)
	}
	return call(ctx)
}

type operation = func(context.Context) error

func through(guard func(context.Context, operation) error, op operation) operation {
	return func(ctx context.Context) error { return guard(ctx, op) }
}

func bounded(d time.Duration, op operation) operation {
	return func(ctx context.Context) error { return ExecuteWithTimeout(ctx, d, op) }
}
