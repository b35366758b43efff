package health

import "net/http"

// DefaultResultStatusCodes maps each status to the code a load balancer
// expects: degraded services keep receiving traffic.
func DefaultResultStatusCodes() map[Status]int {
	return map[Status]int{
		StatusHealthy:   http.StatusOK,
		StatusDegraded:  http.StatusOK,
		StatusUnhealthy: http.StatusServiceUnavailable,
	}
}

// ResolveStatusCode returns the HTTP status code mapped to status.
// A status absent from codes is a configuration bug and yields a
// *ConfigurationError rather than a fallback code.
func ResolveStatusCode(status Status, codes map[Status]int) (int, error) {
	code, ok := codes[status]
	if !ok {
		s := status
		return 0, &ConfigurationError{Status: &s}
	}
	return code, nil
}
