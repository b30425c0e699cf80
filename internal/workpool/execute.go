package workpool

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimedOut reports that the caller stopped waiting before the work
	// finished. The work itself keeps running.
	ErrTimedOut = errors.New("work timed out")
	// ErrNoResult reports that the work finished without a value because
	// it panicked or the pool was closed.
	ErrNoResult = errors.New("work produced no result")
)

// Await waits for the single value on ch until ctx is done.
func Await[T any](ctx context.Context, ch <-chan T) (T, error) {
	var zero T
	select {
	case v, ok := <-ch:
		if !ok {
			return zero, ErrNoResult
		}
		return v, nil
	case <-ctx.Done():
		return zero, fmt.Errorf("%w: %w", ErrTimedOut, ctx.Err())
	}
}

// Execute submits work to p and waits for it until ctx is done.
func Execute[T any](ctx context.Context, p *Pool, work func() T) (T, error) {
	return Await(ctx, Submit(p, work))
}

// ExecuteWithDeadline submits work to p and waits at most d for it.
func ExecuteWithDeadline[T any](ctx context.Context, p *Pool, d time.Duration, work func() T) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return Execute(ctx, p, work)
}
