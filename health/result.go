package health

import "time"

// Result is the outcome of one health check run.
type Result struct {
	Status  Status
	Message string

	// Details is free-form data reported with the result, e.g. latency.
	Details map[string]any

	// Duration is filled in by the executor.
	Duration  time.Duration
	Timestamp time.Time

	// Error is the cause of a non-healthy result, if there is one.
	Error error
}

func newResult(status Status, message string, err error) Result {
	return Result{Status: status, Message: message, Error: err, Timestamp: time.Now()}
}

// Healthy returns a healthy result.
func Healthy(message string) Result { return newResult(StatusHealthy, message, nil) }

// Degraded returns a degraded result.
func Degraded(message string) Result { return newResult(StatusDegraded, message, nil) }

// Unhealthy returns an unhealthy result caused by err, which may be nil.
func Unhealthy(message string, err error) Result {
	return newResult(StatusUnhealthy, message, err)
}

// WithDetails returns r with details attached.
func (r Result) WithDetails(details map[string]any) Result {
	r.Details = details
	return r
}

// WithError returns r with its cause set.
func (r Result) WithError(err error) Result {
	r.Error = err
	return r
}

// WithDuration returns r with its duration set.
func (r Result) WithDuration(d time.Duration) Result {
	r.Duration = d
	return r
}
