package resilience

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"
)

var errProbe = errors.New("connection refused")

// manualClock lets tests move time forward without sleeping.
type manualClock struct{ t time.Time }

func (c *manualClock) now() time.Time          { return c.t }
func (c *manualClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, *manualClock) {
	clock := &manualClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cb := NewCircuitBreaker(cfg)
	cb.now = clock.now
	return cb, clock
}

func fail(context.Context) error { return errProbe }
func pass(context.Context) error { return nil }

func TestNewCircuitBreaker_Defaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
	if cb.Name() != "circuit-breaker" {
		t.Errorf("Name() = %q, want circuit-breaker", cb.Name())
	}
	if cb.cfg.MaxFailures != 5 || cb.cfg.ResetTimeout != 30*time.Second || cb.cfg.HalfOpenMaxRequests != 1 {
		t.Errorf("defaults = %+v", cb.cfg)
	}
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{Name: "redis", MaxFailures: 3})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		if err := cb.Execute(ctx, fail); !errors.Is(err, errProbe) {
			t.Fatalf("call %d: error = %v, want the probe error", i, err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("State() = %v, want open", cb.State())
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Execute() on open circuit = %v, want ErrCircuitOpen", err)
	}
	if called {
		t.Error("operation ran on an open circuit")
	}
}

func TestCircuitBreaker_SuccessClearsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 2})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	_ = cb.Execute(ctx, pass)
	_ = cb.Execute(ctx, fail)

	if got := cb.Snapshot(); got.State != StateClosed || got.Failures != 1 {
		t.Errorf("Snapshot() = %+v, want closed with 1 failure", got)
	}
}

func TestCircuitBreaker_IsFailure(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{
		MaxFailures: 1,
		IsFailure:   func(err error) bool { return err != nil && !errors.Is(err, context.Canceled) },
	})

	_ = cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed for an ignored error", cb.State())
	}
}

func TestCircuitBreaker_Recovery(t *testing.T) {
	tests := []struct {
		name  string
		trial func(context.Context) error
		want  State
	}{
		{name: "trial succeeds", trial: pass, want: StateClosed},
		{name: "trial fails", trial: fail, want: StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})
			ctx := context.Background()

			_ = cb.Execute(ctx, fail)
			clock.advance(59 * time.Second)
			if cb.State() != StateOpen {
				t.Fatalf("State() before reset timeout = %v, want open", cb.State())
			}

			clock.advance(time.Second)
			if cb.State() != StateHalfOpen {
				t.Fatalf("State() after reset timeout = %v, want half-open", cb.State())
			}

			_ = cb.Execute(ctx, tt.trial)
			if cb.State() != tt.want {
				t.Errorf("State() after trial = %v, want %v", cb.State(), tt.want)
			}
		})
	}
}

func TestCircuitBreaker_ReopenRestartsTimer(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	clock.advance(time.Minute)
	_ = cb.Execute(ctx, fail)
	opened := cb.Snapshot().OpenedAt

	clock.advance(30 * time.Second)
	if cb.State() != StateOpen {
		t.Errorf("State() = %v, want open until a full reset timeout after reopening", cb.State())
	}
	if !opened.Equal(clock.t.Add(-30 * time.Second)) {
		t.Errorf("OpenedAt = %v, want the reopen time", opened)
	}
}

func TestCircuitBreaker_HalfOpenAdmitsLimitedTrials(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Second, HalfOpenMaxRequests: 1})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	clock.advance(time.Second)

	var second error
	err := cb.Execute(ctx, func(context.Context) error {
		second = cb.Execute(ctx, pass)
		return nil
	})
	if err != nil {
		t.Fatalf("trial call error = %v", err)
	}
	if !errors.Is(second, ErrCircuitOpen) {
		t.Errorf("concurrent trial = %v, want ErrCircuitOpen", second)
	}
}

func TestCircuitBreaker_IsolateAndReset(t *testing.T) {
	var moves []State
	cb, clock := newTestBreaker(CircuitBreakerConfig{
		ResetTimeout:  time.Second,
		OnStateChange: func(_, to State) { moves = append(moves, to) },
	})

	cb.Isolate()
	clock.advance(time.Hour)
	if cb.State() != StateIsolated {
		t.Fatalf("State() = %v, want isolated regardless of elapsed time", cb.State())
	}
	if err := cb.Execute(context.Background(), pass); !errors.Is(err, ErrCircuitIsolated) {
		t.Errorf("Execute() = %v, want ErrCircuitIsolated", err)
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Errorf("State() after Reset = %v, want closed", cb.State())
	}
	if want := []State{StateIsolated, StateClosed}; !slices.Equal(moves, want) {
		t.Errorf("transitions = %v, want %v", moves, want)
	}
}

func TestCircuitBreaker_OutcomeAfterIsolateIsIgnored(t *testing.T) {
	cb, _ := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1})

	_ = cb.Execute(context.Background(), func(context.Context) error {
		cb.Isolate()
		return errProbe
	})
	if cb.State() != StateIsolated {
		t.Errorf("State() = %v, want isolated", cb.State())
	}
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	type move struct{ from, to State }
	var got []move
	cb, clock := newTestBreaker(CircuitBreakerConfig{
		MaxFailures:   1,
		ResetTimeout:  time.Second,
		OnStateChange: func(from, to State) { got = append(got, move{from, to}) },
	})
	ctx := context.Background()

	_ = cb.Execute(ctx, fail)
	clock.advance(time.Second)
	_ = cb.Execute(ctx, pass)

	want := []move{
		{StateClosed, StateOpen},
		{StateOpen, StateHalfOpen},
		{StateHalfOpen, StateClosed},
	}
	if !slices.Equal(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{StateIsolated, "isolated"},
		{State(-1), "unknown"},
		{State(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestCircuitBreaker_PanicCountsAsFailure(t *testing.T) {
	cb, clock := newTestBreaker(CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})
	ctx := context.Background()

	explode := func(context.Context) error { panic("driver bug") }
	mustPanic := func() {
		t.Helper()
		defer func() {
			if r := recover(); r != "driver bug" {
				t.Fatalf("recover() = %v, want the op's panic", r)
			}
		}()
		_ = cb.Execute(ctx, explode)
	}

	mustPanic()
	if cb.State() != StateOpen {
		t.Fatalf("State() after panic = %v, want open", cb.State())
	}

	clock.advance(time.Minute)
	mustPanic()
	if cb.State() != StateOpen {
		t.Fatalf("State() after half-open panic = %v, want open", cb.State())
	}

	clock.advance(time.Minute)
	if err := cb.Execute(ctx, pass); err != nil {
		t.Fatalf("Execute() after reset timeout = %v, want the trial admitted", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("State() = %v, want closed", cb.State())
	}
}
