package resilience

import (
	"context"
	"time"
)

// ExecuteWithTimeout runs op with a deadline of d.
//
// It returns as soon as the deadline passes even if op is still running;
// op then continues in the background with a cancelled context. ErrTimeout
// reports only this deadline: if ctx itself ends first, ctx.Err() is
// returned. A non-positive d runs op without a deadline.
func ExecuteWithTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	if d <= 0 {
		return op(ctx)
	}

	opCtx, cancel := context.WithTimeoutCause(ctx, d, ErrTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- op(opCtx) }()

	select {
	case err := <-done:
		return err
	case <-opCtx.Done():
		if err := ctx.Err(); err != nil {
			return err
		}
		return context.Cause(opCtx)
	}
}
