package health

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// DuplicatePolicy decides what happens when a name is registered twice.
type DuplicatePolicy int

const (
	// DuplicateReject fails the second registration with ErrDuplicateCheck.
	DuplicateReject DuplicatePolicy = iota
	// DuplicateReplace keeps the first position but swaps in the newest checker.
	DuplicateReplace
)

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Duplicates controls repeated names (compared case-insensitively).
	// Default: DuplicateReject
	Duplicates DuplicatePolicy
}

// Registry is an ordered mapping from check name to registration.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Ordering: iteration follows first-registration order.
type Registry struct {
	config RegistryConfig

	mu    sync.RWMutex
	regs  []Registration
	index map[string]int // lower-cased name -> position in regs
}

// NewRegistry creates an empty registry.
func NewRegistry(config ...RegistryConfig) *Registry {
	var cfg RegistryConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	return &Registry{
		config: cfg,
		index:  make(map[string]int),
	}
}

// RegistrationOption adjusts a registration built by the Add helpers.
type RegistrationOption func(*Registration)

// WithTimeout sets the per-check timeout.
func WithTimeout(d time.Duration) RegistrationOption {
	return func(r *Registration) {
		r.Timeout = d
	}
}

// WithTags attaches tags to the registration.
func WithTags(tags ...string) RegistrationOption {
	return func(r *Registration) {
		r.Tags = append(r.Tags, tags...)
	}
}

// Add registers reg.
func (r *Registry) Add(reg Registration) error {
	reg.Name = strings.TrimSpace(reg.Name)
	if reg.Name == "" {
		return fmt.Errorf("%w: check name is required", ErrInvalidArgument)
	}
	if reg.Checker == nil {
		return fmt.Errorf("%w: checker for %q is nil", ErrInvalidArgument, reg.Name)
	}

	key := strings.ToLower(reg.Name)

	r.mu.Lock()
	defer r.mu.Unlock()

	if pos, exists := r.index[key]; exists {
		if r.config.Duplicates != DuplicateReplace {
			return fmt.Errorf("%w: %q", ErrDuplicateCheck, reg.Name)
		}
		r.regs[pos] = reg
		return nil
	}

	r.index[key] = len(r.regs)
	r.regs = append(r.regs, reg)
	return nil
}

// AddCheck registers checker under name.
func (r *Registry) AddCheck(name string, checker Checker, opts ...RegistrationOption) error {
	reg := Registration{Name: name, Checker: checker}
	for _, opt := range opts {
		opt(&reg)
	}
	return r.Add(reg)
}

// AddFunc registers a probe function that receives the cancellation signal.
func (r *Registry) AddFunc(name string, fn func(context.Context) Result, opts ...RegistrationOption) error {
	if fn == nil {
		return fmt.Errorf("%w: probe for %q is nil", ErrInvalidArgument, name)
	}
	return r.AddCheck(name, CheckerFunc(fn), opts...)
}

// AddSimpleFunc registers a probe function that ignores cancellation.
func (r *Registry) AddSimpleFunc(name string, fn func() Result, opts ...RegistrationOption) error {
	if fn == nil {
		return fmt.Errorf("%w: probe for %q is nil", ErrInvalidArgument, name)
	}
	return r.AddCheck(name, SimpleCheckerFunc(fn), opts...)
}

// AddNamed registers a checker under its own name.
func (r *Registry) AddNamed(checker NamedChecker, opts ...RegistrationOption) error {
	if checker == nil {
		return fmt.Errorf("%w: checker is nil", ErrInvalidArgument)
	}
	return r.AddCheck(checker.Name(), checker, opts...)
}

// Lookup returns the registration for name, matched case-insensitively.
func (r *Registry) Lookup(name string) (Registration, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pos, ok := r.index[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Registration{}, false
	}
	return r.regs[pos], true
}

// Names returns registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.regs))
	for i, reg := range r.regs {
		names[i] = reg.Name
	}
	return names
}

// Registrations returns a snapshot of all registrations in order.
func (r *Registry) Registrations() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := make([]Registration, len(r.regs))
	copy(regs, r.regs)
	return regs
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.regs)
}

// Filter selects the requested registrations from a snapshot of r.
func (r *Registry) Filter(names []string) ([]Registration, error) {
	return Filter(r.Registrations(), names)
}
