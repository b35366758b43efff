package health

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/healthops/resilience"
)

// Executor runs a set of registrations and aggregates their results.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: ctx carries the inbound request's cancellation signal.
// - Ordering: report entries follow the order of regs.
type Executor interface {
	CheckHealth(ctx context.Context, regs []Registration) Report
}

// ServiceConfig configures the default executor.
type ServiceConfig struct {
	// CheckTimeout bounds each check that has no timeout of its own.
	// Default: 10 seconds
	CheckTimeout time.Duration

	// MaxConcurrency limits how many checks run at once.
	// Default: 0 (no limit)
	MaxConcurrency int

	// Parallel runs health checks in parallel when true.
	// Default: true
	Parallel bool
}

// Service is the default Executor.
type Service struct {
	config ServiceConfig
}

// NewService creates a new health check service.
func NewService(config ...ServiceConfig) *Service {
	cfg := ServiceConfig{
		CheckTimeout: 10 * time.Second,
		Parallel:     true,
	}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.CheckTimeout <= 0 {
			cfg.CheckTimeout = 10 * time.Second
		}
	}
	return &Service{config: cfg}
}

// CheckHealth runs regs and returns the aggregate report.
//
// A check that panics does not turn into a status: once every check has
// finished, the first panic is re-raised on the calling goroutine.
func (s *Service) CheckHealth(ctx context.Context, regs []Registration) Report {
	start := time.Now()
	entries := make([]Entry, len(regs))
	panics := make([]*checkPanic, len(regs))

	if s.config.Parallel {
		var g errgroup.Group
		if s.config.MaxConcurrency > 0 {
			g.SetLimit(s.config.MaxConcurrency)
		}
		for i, reg := range regs {
			g.Go(func() error {
				entries[i], panics[i] = s.run(ctx, reg)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, reg := range regs {
			entries[i], panics[i] = s.run(ctx, reg)
		}
	}

	for _, p := range panics {
		if p != nil {
			panic(p)
		}
	}

	return NewReport(entries, time.Since(start))
}

// Check runs a single registration from regs, matched case-insensitively.
func (s *Service) Check(ctx context.Context, regs []Registration, name string) (Result, error) {
	for _, reg := range regs {
		if strings.EqualFold(reg.Name, name) {
			entry, p := s.run(ctx, reg)
			if p != nil {
				panic(p)
			}
			return entry.Result, nil
		}
	}
	return Result{}, ErrCheckerNotFound
}

func (s *Service) run(ctx context.Context, reg Registration) (Entry, *checkPanic) {
	timeout := reg.Timeout
	if timeout <= 0 {
		timeout = s.config.CheckTimeout
	}

	start := time.Now()
	out := make(chan Result, 1)
	err := resilience.ExecuteWithTimeout(ctx, timeout, func(ctx context.Context) (err error) {
		defer func() {
			if v := recover(); v != nil {
				err = &checkPanic{name: reg.Name, value: v, stack: debug.Stack()}
			}
		}()
		out <- reg.Checker.Check(ctx)
		return nil
	})

	var result Result
	var p *checkPanic
	switch {
	case err == nil:
		result = <-out
	case errors.As(err, &p):
		return Entry{Name: reg.Name, Tags: reg.Tags}, p
	case errors.Is(err, resilience.ErrTimeout):
		result = Result{
			Status:  StatusUnhealthy,
			Message: "check timed out",
			Error:   ErrCheckTimeout,
		}
	case err != nil:
		result = Result{
			Status:  StatusUnhealthy,
			Message: "check cancelled",
			Error:   err,
		}
	}

	result.Duration = time.Since(start)
	if result.Timestamp.IsZero() {
		result.Timestamp = start
	}
	return Entry{Name: reg.Name, Tags: reg.Tags, Result: result}, nil
}

// checkPanic carries a recovered panic back to the caller's goroutine.
type checkPanic struct {
	name  string
	value any
	stack []byte
}

func (p *checkPanic) Error() string {
	return fmt.Sprintf("health: check %q panicked: %v\n%s", p.name, p.value, p.stack)
}

// Unwrap exposes a panic value that is itself an error.
func (p *checkPanic) Unwrap() error {
	if err, ok := p.value.(error); ok {
		return err
	}
	return nil
}

var _ Executor = (*Service)(nil)
