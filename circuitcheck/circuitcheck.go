package circuitcheck

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/resilience"
)

// ErrUnknownState indicates a circuit state with no health mapping.
var ErrUnknownState = errors.New("circuitcheck: unknown circuit state")

// UnknownStateError carries the state that could not be classified.
// It matches ErrUnknownState.
type UnknownStateError struct {
	State resilience.State
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("circuitcheck: unknown circuit state %d", int(e.State))
}

// Is reports whether target is ErrUnknownState.
func (e *UnknownStateError) Is(target error) bool {
	return target == ErrUnknownState
}

// Policy is a named circuit whose state can be read at any time.
// *resilience.CircuitBreaker satisfies it.
type Policy interface {
	Name() string
	State() resilience.State
}

var _ Policy = (*resilience.CircuitBreaker)(nil)

// ClassifyState maps a circuit state to a health result.
func ClassifyState(state resilience.State) (health.Result, error) {
	switch state {
	case resilience.StateClosed:
		return health.Healthy(""), nil
	case resilience.StateHalfOpen:
		return health.Degraded("CircuitState.HalfOpen"), nil
	case resilience.StateOpen:
		return health.Degraded("CircuitState.Open"), nil
	case resilience.StateIsolated:
		return health.Degraded("CircuitState.Isolated"), nil
	default:
		return health.Result{}, &UnknownStateError{State: state}
	}
}

// Classify reads the policy's current state and classifies it.
func Classify(policy Policy) (health.Result, error) {
	return ClassifyState(policy.State())
}

// Checker is a health.Checker backed by a circuit policy.
type Checker struct {
	policy Policy
}

var _ health.NamedChecker = (*Checker)(nil)

// NewChecker returns a checker for policy.
func NewChecker(policy Policy) *Checker {
	return &Checker{policy: policy}
}

// Name returns the policy name.
func (c *Checker) Name() string {
	return c.policy.Name()
}

// Check classifies the policy's state at call time.
// It panics with *UnknownStateError if the state has no mapping.
func (c *Checker) Check(_ context.Context) health.Result {
	result, err := Classify(c.policy)
	if err != nil {
		panic(err)
	}
	return result
}

// Option adjusts how Register adds the check.
type Option func(*options)

type options struct {
	name string
	tags []string
}

// WithName overrides the check name. Default: the policy name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithTags attaches tags to the registration.
func WithTags(tags ...string) Option {
	return func(o *options) {
		o.tags = append(o.tags, tags...)
	}
}

// Register adds a circuit check for policy to registry. A nil policy,
// including a nil *resilience.CircuitBreaker, is ErrInvalidArgument.
func Register(registry *health.Registry, policy Policy, opts ...Option) error {
	if registry == nil {
		return fmt.Errorf("%w: registry is nil", health.ErrInvalidArgument)
	}
	if isNil(policy) {
		return fmt.Errorf("%w: circuit policy is nil", health.ErrInvalidArgument)
	}

	o := options{name: policy.Name()}
	for _, opt := range opts {
		opt(&o)
	}

	return registry.AddCheck(o.name, NewChecker(policy), health.WithTags(o.tags...))
}

func isNil(policy Policy) bool {
	if policy == nil {
		return true
	}
	v := reflect.ValueOf(policy)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
