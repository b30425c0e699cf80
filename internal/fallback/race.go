// Package fallback resolves a lookup that has an authoritative but slow
// source and a fast heuristic one.
package fallback

import (
	"context"

	"lodestar/internal/workpool"
)

// Kind tags which source produced an Outcome.
type Kind uint8

const (
	// BothFailed means neither source produced a value.
	BothFailed Kind = iota
	// PrimarySuccess means the authoritative source answered.
	PrimarySuccess
	// SecondarySuccess means the authoritative source failed and the
	// heuristic source answered.
	SecondarySuccess
)

func (k Kind) String() string {
	switch k {
	case PrimarySuccess:
		return "primary"
	case SecondarySuccess:
		return "secondary"
	case BothFailed:
		return "none"
	}
	return "unknown"
}

// Outcome is the single result of a Race.
type Outcome[T any] struct {
	Kind  Kind
	Value T
}

// Ok reports whether either source produced Value.
func (o Outcome[T]) Ok() bool { return o.Kind != BothFailed }

// Race runs secondary on p (when enabled) while primary runs on the calling
// goroutine, which is expected to be a pool worker itself.
//
// A successful primary always wins, even if secondary finished first and
// disagrees. Only when primary fails does Race wait for secondary, and that
// wait is bounded by ctx alone: the heuristic shares whatever is left of the
// caller's deadline. When disabled, a primary failure yields BothFailed
// without ever starting secondary.
func Race[T any](ctx context.Context, p *workpool.Pool, primary func() (T, error), secondary func() (T, bool), enabled bool) Outcome[T] {
	type found struct {
		value T
		ok    bool
	}
	var pending <-chan found
	if enabled && secondary != nil {
		pending = workpool.Submit(p, func() found {
			v, ok := secondary()
			return found{value: v, ok: ok}
		})
	}

	if v, err := primary(); err == nil {
		return Outcome[T]{Kind: PrimarySuccess, Value: v}
	}
	if pending == nil {
		return Outcome[T]{Kind: BothFailed}
	}

	got, err := workpool.Await(ctx, pending)
	if err != nil || !got.ok {
		return Outcome[T]{Kind: BothFailed}
	}
	return Outcome[T]{Kind: SecondarySuccess, Value: got.value}
}
