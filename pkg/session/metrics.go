package session

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for sessions and their store.
// A nil *Metrics records nothing.
type Metrics struct {
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec
	SessionsIssued  prometheus.Counter
	InvalidTokens   *prometheus.CounterVec
	CookiesWritten  prometheus.Counter
	ExpiredFlushes  *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		StoreOperations: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "httpsession",
				Name:      "store_operations_total",
				Help:      "Total session store operations",
			},
			[]string{"op", "result"}, // result=ok/not_found/error
		),
		StoreDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "httpsession",
				Name:      "store_operation_duration_seconds",
				Help:      "Session store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		SessionsIssued: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "httpsession",
				Name:      "sessions_issued_total",
				Help:      "Total new sessions that received a cookie",
			},
		),
		InvalidTokens: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "httpsession",
				Name:      "invalid_tokens_total",
				Help:      "Total session cookies that failed verification",
			},
			[]string{"action"}, // action=renewed/rejected
		),
		CookiesWritten: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "httpsession",
				Name:      "cookies_written_total",
				Help:      "Total Set-Cookie headers emitted for sessions",
			},
		),
		ExpiredFlushes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "httpsession",
				Name:      "expired_flushes_total",
				Help:      "Total expired-session sweeps",
			},
			[]string{"result"},
		),
	}
}

func (m *Metrics) invalidToken(action string) {
	if m == nil {
		return
	}
	m.InvalidTokens.WithLabelValues(action).Inc()
}

func (m *Metrics) sessionIssued() {
	if m == nil {
		return
	}
	m.SessionsIssued.Inc()
}

func (m *Metrics) cookieWritten() {
	if m == nil {
		return
	}
	m.CookiesWritten.Inc()
}

func (m *Metrics) flushed(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ExpiredFlushes.WithLabelValues(result).Inc()
}

func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	m.StoreOperations.WithLabelValues(op, result).Inc()
	m.StoreDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// Instrument wraps store so every operation is counted and timed. The
// optional Lister and Flusher capabilities of store are preserved.
func Instrument(store Store, metrics *Metrics) Store {
	if metrics == nil {
		return store
	}

	base := &instrumentedStore{store: store, metrics: metrics}
	lister, canList := store.(Lister)
	flusher, canFlush := store.(Flusher)

	switch {
	case canList && canFlush:
		return &struct {
			*instrumentedStore
			instrumentedLister
			instrumentedFlusher
		}{base, instrumentedLister{lister, metrics}, instrumentedFlusher{flusher, metrics}}
	case canList:
		return &struct {
			*instrumentedStore
			instrumentedLister
		}{base, instrumentedLister{lister, metrics}}
	case canFlush:
		return &struct {
			*instrumentedStore
			instrumentedFlusher
		}{base, instrumentedFlusher{flusher, metrics}}
	default:
		return base
	}
}

type instrumentedStore struct {
	store   Store
	metrics *Metrics
}

func (s *instrumentedStore) New() Data { return s.store.New() }

func (s *instrumentedStore) TTL() time.Duration { return s.store.TTL() }

func (s *instrumentedStore) Get(ctx context.Context, id string) (data Data, err error) {
	defer func(start time.Time) { s.metrics.observe("get", start, err) }(time.Now())
	return s.store.Get(ctx, id)
}

func (s *instrumentedStore) Set(ctx context.Context, id string, data Data) (err error) {
	defer func(start time.Time) { s.metrics.observe("set", start, err) }(time.Now())
	return s.store.Set(ctx, id, data)
}

func (s *instrumentedStore) Touch(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.metrics.observe("touch", start, err) }(time.Now())
	return s.store.Touch(ctx, id)
}

func (s *instrumentedStore) Delete(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.metrics.observe("delete", start, err) }(time.Now())
	return s.store.Delete(ctx, id)
}

func (s *instrumentedStore) Clear(ctx context.Context, id string) (err error) {
	defer func(start time.Time) { s.metrics.observe("clear", start, err) }(time.Now())
	return s.store.Clear(ctx, id)
}

type instrumentedLister struct {
	lister  Lister
	metrics *Metrics
}

func (l instrumentedLister) IDs(ctx context.Context) (ids []string, err error) {
	defer func(start time.Time) { l.metrics.observe("ids", start, err) }(time.Now())
	return l.lister.IDs(ctx)
}

type instrumentedFlusher struct {
	flusher Flusher
	metrics *Metrics
}

func (f instrumentedFlusher) FlushExpired(ctx context.Context) (err error) {
	defer func(start time.Time) { f.metrics.observe("flush_expired", start, err) }(time.Now())
	return f.flusher.FlushExpired(ctx)
}
