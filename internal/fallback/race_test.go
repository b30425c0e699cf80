package fallback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lodestar/internal/workpool"
)

var errPrimary = errors.New("no index")

func newPool(t *testing.T) *workpool.Pool {
	t.Helper()
	p := workpool.New(workpool.Options{
		Workers: 2,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	t.Cleanup(p.Close)
	return p
}

func TestPrimaryWinsEvenWhenSecondaryIsFaster(t *testing.T) {
	p := newPool(t)
	secondaryDone := make(chan struct{})

	out := Race(context.Background(), p,
		func() (string, error) {
			<-secondaryDone
			return "authoritative", nil
		},
		func() (string, bool) {
			defer close(secondaryDone)
			return "heuristic", true
		},
		true,
	)

	require.Equal(t, PrimarySuccess, out.Kind)
	assert.Equal(t, "authoritative", out.Value)
}

func TestPrimarySuccessDoesNotWaitForSecondary(t *testing.T) {
	p := newPool(t)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	started := time.Now()
	out := Race(context.Background(), p,
		func() (int, error) { return 1, nil },
		func() (int, bool) {
			<-release
			return 2, true
		},
		true,
	)

	assert.Equal(t, PrimarySuccess, out.Kind)
	assert.Equal(t, 1, out.Value)
	assert.Less(t, time.Since(started), time.Second)
}

func TestSecondaryUsedWhenPrimaryFails(t *testing.T) {
	p := newPool(t)

	out := Race(context.Background(), p,
		func() (int, error) { return 0, errPrimary },
		func() (int, bool) { return 7, true },
		true,
	)

	require.True(t, out.Ok())
	assert.Equal(t, SecondarySuccess, out.Kind)
	assert.Equal(t, 7, out.Value)
}

func TestDisabledFallbackNeverRunsSecondary(t *testing.T) {
	p := newPool(t)
	var called atomic.Bool

	out := Race(context.Background(), p,
		func() (int, error) { return 0, errPrimary },
		func() (int, bool) {
			called.Store(true)
			return 7, true
		},
		false,
	)

	assert.Equal(t, BothFailed, out.Kind)
	assert.Zero(t, out.Value)
	assert.False(t, called.Load())
}

func TestSecondaryMissIsBothFailed(t *testing.T) {
	p := newPool(t)

	out := Race(context.Background(), p,
		func() (int, error) { return 0, errPrimary },
		func() (int, bool) { return 0, false },
		true,
	)
	assert.Equal(t, BothFailed, out.Kind)
}

func TestSecondaryPanicIsBothFailed(t *testing.T) {
	p := newPool(t)

	out := Race(context.Background(), p,
		func() (int, error) { return 0, errPrimary },
		func() (int, bool) { panic("heuristic crashed") },
		true,
	)
	assert.Equal(t, BothFailed, out.Kind)
}

func TestSecondaryWaitSharesCallerDeadline(t *testing.T) {
	p := newPool(t)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	out := Race(ctx, p,
		func() (int, error) { return 0, errPrimary },
		func() (int, bool) {
			<-release
			return 9, true
		},
		true,
	)
	assert.Equal(t, BothFailed, out.Kind)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "primary", PrimarySuccess.String())
	assert.Equal(t, "secondary", SecondarySuccess.String())
	assert.Equal(t, "none", BothFailed.String())
}
