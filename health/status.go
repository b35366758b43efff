package health

import (
	"fmt"
	"strings"
)

// Status is the outcome class of a health check. Higher values are worse.
type Status int

const (
	StatusHealthy Status = iota
	StatusDegraded
	StatusUnhealthy
)

var statusNames = [...]string{
	StatusHealthy:   "Healthy",
	StatusDegraded:  "Degraded",
	StatusUnhealthy: "Unhealthy",
}

func (s Status) known() bool { return s >= StatusHealthy && s <= StatusUnhealthy }

// Name returns the title-case status name used in diagnostics and in
// text responses.
func (s Status) Name() string {
	if !s.known() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// String returns the lower-case name used in JSON bodies and telemetry.
func (s Status) String() string {
	if !s.known() {
		return "unknown"
	}
	return strings.ToLower(statusNames[s])
}

// ParseStatus maps a status name to a Status, ignoring case.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return Status(s), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}
