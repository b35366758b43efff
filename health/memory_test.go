package health

import (
	"context"
	"runtime"
	"testing"
)

func TestNewMemoryChecker(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{})

	if checker.config.WarningThreshold != 0.8 {
		t.Errorf("WarningThreshold = %v, want 0.8", checker.config.WarningThreshold)
	}
	if checker.config.CriticalThreshold != 0.95 {
		t.Errorf("CriticalThreshold = %v, want 0.95", checker.config.CriticalThreshold)
	}
	if checker.Name() != "memory" {
		t.Errorf("Name() = %v, want 'memory'", checker.Name())
	}
}

func TestNewMemoryChecker_InvalidThresholds(t *testing.T) {
	checker := NewMemoryChecker(MemoryCheckerConfig{WarningThreshold: 1.5})
	if checker.config.WarningThreshold != 0.8 {
		t.Errorf("Invalid warning should default to 0.8, got %v", checker.config.WarningThreshold)
	}

	checker = NewMemoryChecker(MemoryCheckerConfig{
		WarningThreshold:  0.9,
		CriticalThreshold: 0.7,
	})
	if checker.config.CriticalThreshold <= checker.config.WarningThreshold {
		t.Error("Critical threshold should be adjusted to be > warning threshold")
	}
}

func TestMemoryChecker_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		alloc uint64
		want  Status
	}{
		{"normal", 10, StatusHealthy},
		{"high", 85, StatusDegraded},
		{"critical", 99, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewMemoryChecker(MemoryCheckerConfig{MaxAlloc: 100})
			checker.stats = func(s *runtime.MemStats) { s.Alloc = tt.alloc }

			result := checker.Check(context.Background())
			if result.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", result.Status, tt.want, result.Message)
			}
			if result.Details["budget_bytes"] != uint64(100) {
				t.Errorf("budget_bytes = %v, want 100", result.Details["budget_bytes"])
			}
		})
	}
}

func TestMemoryChecker_Live(t *testing.T) {
	result := NewMemoryChecker(MemoryCheckerConfig{}).Check(context.Background())

	if result.Status == StatusUnhealthy {
		t.Errorf("live check unexpectedly unhealthy: %s", result.Message)
	}
}

func TestMemoryChecker_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := NewMemoryChecker(MemoryCheckerConfig{}).Check(ctx)
	if result.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy for cancelled context", result.Status)
	}
}
