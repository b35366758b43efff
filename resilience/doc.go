// Package resilience guards health probes against slow or failing
// dependencies.
//
// A CircuitBreaker stops calling a dependency after consecutive failures
// and admits trial calls once its reset timeout passes. It can also be
// isolated by hand, which holds it open until Reset. Its State is what a
// circuit health check reports.
//
// A Bulkhead caps in-flight probes against one dependency.
// ExecuteWithTimeout bounds a single probe; a cancelled caller context is
// reported as the context error, not as ErrTimeout.
//
// Executor layers the three:
//
//	executor := resilience.NewExecutor(
//	    resilience.WithBulkhead(resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: 4})),
//	    resilience.WithCircuitBreaker(cb),
//	    resilience.WithTimeout(2*time.Second),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return client.Ping(ctx).Err()
//	})
package resilience
