package health

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCheckFailed indicates a health check failed.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout indicates a health check timed out.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates a checker was not found.
	ErrCheckerNotFound = errors.New("health: checker not found")

	// ErrInvalidArgument indicates a required argument was empty or nil.
	ErrInvalidArgument = errors.New("health: invalid argument")

	// ErrDuplicateCheck indicates a check name is already registered.
	ErrDuplicateCheck = errors.New("health: duplicate check name")

	// ErrUnknownStatus indicates a status name outside Healthy, Degraded and Unhealthy.
	ErrUnknownStatus = errors.New("health: unknown status")

	// ErrConfiguration indicates the health endpoint is misconfigured.
	ErrConfiguration = errors.New("health: configuration error")
)

// ConfigurationError describes a caller configuration bug detected while
// building or serving a health endpoint. It matches ErrConfiguration.
type ConfigurationError struct {
	// Missing lists requested check names with no registration.
	Missing []string

	// Registered lists every registered check name.
	Registered []string

	// Status is set when no status code is mapped for it.
	Status *Status
}

func (e *ConfigurationError) Error() string {
	if e.Status != nil {
		return fmt.Sprintf("health: no status code mapped for health status %s", e.Status.Name())
	}
	return fmt.Sprintf("health: the following health checks were not found: %s. Registered health checks: %s",
		quoteList(e.Missing), quoteList(e.Registered))
}

// Is reports whether target is ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func quoteList(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "'" + n + "'"
	}
	return strings.Join(quoted, ", ")
}
