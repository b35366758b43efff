package health

import (
	"errors"
	"testing"
)

func TestStatus_Names(t *testing.T) {
	tests := []struct {
		status Status
		name   string
		str    string
	}{
		{StatusHealthy, "Healthy", "healthy"},
		{StatusDegraded, "Degraded", "degraded"},
		{StatusUnhealthy, "Unhealthy", "unhealthy"},
		{Status(7), "Status(7)", "unknown"},
		{Status(-1), "Status(-1)", "unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.Name(); got != tt.name {
			t.Errorf("Status(%d).Name() = %q, want %q", int(tt.status), got, tt.name)
		}
		if got := tt.status.String(); got != tt.str {
			t.Errorf("Status(%d).String() = %q, want %q", int(tt.status), got, tt.str)
		}
	}
}

func TestParseStatus(t *testing.T) {
	for in, want := range map[string]Status{
		"Healthy":   StatusHealthy,
		"degraded":  StatusDegraded,
		"UNHEALTHY": StatusUnhealthy,
	} {
		got, err := ParseStatus(in)
		if err != nil || got != want {
			t.Errorf("ParseStatus(%q) = %v, %v; want %v", in, got, err, want)
		}
	}

	for _, in := range []string{"", "sick", "Status(7)"} {
		if _, err := ParseStatus(in); !errors.Is(err, ErrUnknownStatus) {
			t.Errorf("ParseStatus(%q) error = %v, want ErrUnknownStatus", in, err)
		}
	}
}

func TestStatus_OrderedBySeverity(t *testing.T) {
	if !(StatusHealthy < StatusDegraded && StatusDegraded < StatusUnhealthy) {
		t.Error("statuses must be ordered healthy < degraded < unhealthy")
	}
}
