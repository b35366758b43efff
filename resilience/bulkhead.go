package resilience

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures a Bulkhead.
type BulkheadConfig struct {
	// Name identifies the dependency the bulkhead guards.
	Name string

	// MaxConcurrent is the number of calls allowed in flight.
	// Default: 10
	MaxConcurrent int

	// MaxWait is how long a call may queue for a slot. Zero rejects
	// immediately when the bulkhead is full.
	MaxWait time.Duration
}

// Bulkhead caps the number of concurrent calls into one dependency so a
// slow dependency cannot pile up probes.
type Bulkhead struct {
	cfg BulkheadConfig
	sem *semaphore.Weighted

	active   atomic.Int64
	rejected atomic.Int64
}

// NewBulkhead returns an empty bulkhead.
func NewBulkhead(cfg BulkheadConfig) *Bulkhead {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 10
	}
	return &Bulkhead{
		cfg: cfg,
		sem: semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// Execute runs op once a slot is free. It returns ErrBulkheadFull when no
// slot frees up within MaxWait, or ctx.Err() if ctx ends first.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.acquire(ctx); err != nil {
		return err
	}
	b.active.Add(1)
	defer func() {
		b.active.Add(-1)
		b.sem.Release(1)
	}()
	return op(ctx)
}

func (b *Bulkhead) acquire(ctx context.Context) error {
	if b.sem.TryAcquire(1) {
		return nil
	}
	if b.cfg.MaxWait <= 0 {
		b.rejected.Add(1)
		return ErrBulkheadFull
	}

	waitCtx, cancel := context.WithTimeout(ctx, b.cfg.MaxWait)
	defer cancel()
	if err := b.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		b.rejected.Add(1)
		return ErrBulkheadFull
	}
	return nil
}

// Snapshot returns a point-in-time view of the bulkhead.
func (b *Bulkhead) Snapshot() BulkheadSnapshot {
	return BulkheadSnapshot{
		Name:     b.cfg.Name,
		Capacity: b.cfg.MaxConcurrent,
		Active:   int(b.active.Load()),
		Rejected: b.rejected.Load(),
	}
}

// BulkheadSnapshot is returned by Bulkhead.Snapshot.
type BulkheadSnapshot struct {
	Name     string
	Capacity int
	Active   int
	Rejected int64
}
