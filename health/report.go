package health

import (
	"strings"
	"time"
)

// Entry is the result of one named check within a report.
type Entry struct {
	Name   string
	Tags   []string
	Result Result
}

// Report is the aggregate outcome of running a set of checks.
type Report struct {
	// Status is the worst status among the entries.
	Status Status

	// Entries are in the order the checks were supplied.
	Entries []Entry

	// TotalDuration is the wall time spent running every check.
	TotalDuration time.Duration
}

// NewReport builds a report and computes its overall status.
func NewReport(entries []Entry, total time.Duration) Report {
	return Report{
		Status:        OverallStatus(entries),
		Entries:       entries,
		TotalDuration: total,
	}
}

// Entry returns the entry for name, matched case-insensitively.
func (r Report) Entry(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if strings.EqualFold(e.Name, name) {
			return e, true
		}
	}
	return Entry{}, false
}

// OverallStatus computes the overall health status from a set of entries.
// Returns Unhealthy if any check is unhealthy.
// Returns Degraded if any check is degraded but none are unhealthy.
// Returns Healthy if all checks are healthy or there are none.
func OverallStatus(entries []Entry) Status {
	status := StatusHealthy
	for _, e := range entries {
		if e.Result.Status > status {
			status = e.Result.Status
		}
	}
	return status
}
