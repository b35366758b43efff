// Package health provides health check registration and HTTP exposure.
//
// Checks are registered by name in a Registry. A Middleware selects a fixed
// subset of them once, runs that subset through an Executor on every
// request and maps the aggregate Status to an HTTP status code.
//
// # Core Concepts
//
// A Checker is any component that can report its health status. The Status
// type represents the health state: Healthy, Degraded, or Unhealthy. A
// Report aggregates the results of several checks; its status is the worst
// of its entries.
//
// # Registering Checks
//
//	reg := health.NewRegistry()
//	_ = reg.AddFunc("database", func(ctx context.Context) health.Result {
//	    if err := db.PingContext(ctx); err != nil {
//	        return health.Unhealthy("ping failed", err)
//	    }
//	    return health.Healthy("")
//	})
//	_ = reg.AddNamed(health.NewMemoryChecker(health.MemoryCheckerConfig{}))
//
// Names are unique case-insensitively. By default a second registration
// under the same name fails with ErrDuplicateCheck; set
// RegistryConfig.Duplicates to DuplicateReplace for last-one-wins.
//
// # Serving Checks
//
//	mw, err := health.NewMiddleware(reg, health.NewService(), health.Options{
//	    Names:          []string{"database"},
//	    ResponseWriter: health.JSONResponseWriter,
//	})
//	if err != nil {
//	    // a requested name is not registered
//	}
//	http.Handle("/readyz", mw)
//
// Requested names are validated when the middleware is built. A status
// missing from Options.ResultStatusCodes is reported as a
// *ConfigurationError at request time instead of falling back to a default.
package health
