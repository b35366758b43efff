// Package circuitcheck reports a circuit breaker's state as a health check.
//
// A closed circuit is healthy. A half-open, open or isolated circuit is
// degraded, with a description naming the state, e.g. "CircuitState.Open".
// A state outside that set is a programming error and is never reported as
// a health status.
//
//	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{Name: "payments"})
//	if err := circuitcheck.Register(registry, cb, circuitcheck.WithTags("ready")); err != nil {
//	    return err
//	}
package circuitcheck
