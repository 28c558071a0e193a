package session_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

type flusherFunc func(ctx context.Context) error

func (f flusherFunc) FlushExpired(ctx context.Context) error { return f(ctx) }

func TestSweeper_Run(t *testing.T) {
	var calls atomic.Int32
	flusher := flusherFunc(func(context.Context) error {
		calls.Add(1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		session.NewSweeper(flusher, 5*time.Millisecond).Run(ctx)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancellation")
	}
}

func TestSweeper_FlushesMemoryStore(t *testing.T) {
	clk := newClock()
	store := session.NewMemoryStore(time.Minute, session.WithMemoryClock(clk.Now))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale", session.Data{}))
	clk.Advance(2 * time.Minute)
	require.NoError(t, store.Set(ctx, "fresh", session.Data{}))

	require.NoError(t, session.NewSweeper(store, time.Minute).Sweep(ctx))
	assert.Equal(t, 1, store.Len())
}

func TestSweeper_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := session.NewMetrics(reg)

	boom := errors.New("timeout")
	failing := flusherFunc(func(context.Context) error { return boom })
	ok := flusherFunc(func(context.Context) error { return nil })

	assert.ErrorIs(t, session.NewSweeper(failing, 0, session.WithSweeperMetrics(metrics)).Sweep(context.Background()), boom)
	assert.NoError(t, session.NewSweeper(ok, 0, session.WithSweeperMetrics(metrics)).Sweep(context.Background()))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExpiredFlushes.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ExpiredFlushes.WithLabelValues("ok")))
}
