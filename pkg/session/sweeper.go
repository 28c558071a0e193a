package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/dmitrymomot/httpsession/pkg/logger"
)

// DefaultSweepInterval is used when a Sweeper is created with a
// non-positive interval.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper calls FlushExpired on a schedule. Run it in its own goroutine;
// flushing can be expensive and never belongs on the request path.
type Sweeper struct {
	flusher  Flusher
	interval time.Duration
	logger   *slog.Logger
	metrics  *Metrics
}

// SweeperOption configures a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweeperLogger sets the logger used to report failed sweeps.
func WithSweeperLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.logger = l
	}
}

// WithSweeperMetrics counts sweeps by result.
func WithSweeperMetrics(m *Metrics) SweeperOption {
	return func(s *Sweeper) {
		s.metrics = m
	}
}

// NewSweeper creates a Sweeper flushing f every interval.
func NewSweeper(f Flusher, interval time.Duration, opts ...SweeperOption) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	s := &Sweeper{
		flusher:  f,
		interval: interval,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("session.sweeper"))
	return s
}

// Sweep runs a single flush.
func (s *Sweeper) Sweep(ctx context.Context) error {
	start := time.Now()
	err := s.flusher.FlushExpired(ctx)
	s.metrics.flushed(err)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to flush expired sessions", logger.Error(err))
		return err
	}
	s.logger.DebugContext(ctx, "flushed expired sessions", logger.Duration(time.Since(start)))
	return nil
}

// Run sweeps every interval until ctx is cancelled. Failed sweeps are logged
// and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.Sweep(ctx)
		case <-ctx.Done():
			return
		}
	}
}
