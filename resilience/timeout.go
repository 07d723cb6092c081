package resilience

import (
	"context"
	"errors"
	"time"
)

// WithinTimeout runs op with a deadline of d.
//
// The call returns at the deadline even if op ignores its context; op keeps
// running in the background and its result is discarded.
func WithinTimeout(ctx context.Context, d time.Duration, op func(context.Context) error) error {
	if d <= 0 {
		return op(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- op(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
