package health

import (
	"context"
	"time"
)

// Checker probes one component.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: ctx carries the per-check deadline; long probes should honor it.
// - Panics: a panic is not converted to a result; it reaches the caller.
type Checker interface {
	Check(ctx context.Context) Result
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) Result

// Check calls f(ctx).
func (f CheckerFunc) Check(ctx context.Context) Result { return f(ctx) }

// SimpleCheckerFunc adapts a function that ignores cancellation.
type SimpleCheckerFunc func() Result

// Check calls f().
func (f SimpleCheckerFunc) Check(context.Context) Result { return f() }

// NamedChecker is a Checker that knows the name it registers under.
type NamedChecker interface {
	Checker
	Name() string
}

// Registration binds a checker to a name.
type Registration struct {
	// Name is unique within a Registry, ignoring case.
	Name    string
	Checker Checker

	// Timeout bounds one run of the check. Zero uses the executor's default.
	Timeout time.Duration

	// Tags are free-form labels reported alongside the result.
	Tags []string
}
