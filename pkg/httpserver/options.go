package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Option configures a Server. Invalid arguments panic at construction time.
type Option func(*settings)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("httpserver: empty listen address")
	}
	return func(s *settings) { s.addr = addr }
}

func WithReadTimeout(d time.Duration) Option {
	mustBePositive("read timeout", d)
	return func(s *settings) { s.readTimeout = d }
}

func WithWriteTimeout(d time.Duration) Option {
	mustBePositive("write timeout", d)
	return func(s *settings) { s.writeTimeout = d }
}

// WithIdleTimeout bounds how long keep-alive connections stay open.
func WithIdleTimeout(d time.Duration) Option {
	mustBePositive("idle timeout", d)
	return func(s *settings) { s.idleTimeout = d }
}

// WithShutdownTimeout bounds the graceful drain of in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	mustBePositive("shutdown timeout", d)
	return func(s *settings) { s.shutdownTimeout = d }
}

// WithLogger sets the logger. Nil discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithWorker runs fn alongside the server, such as an expired-session
// sweeper. Its context is cancelled when the server shuts down and Run
// waits for it to return.
func WithWorker(fn func(ctx context.Context)) Option {
	if fn == nil {
		panic("httpserver: nil worker")
	}
	return func(s *settings) { s.workers = append(s.workers, fn) }
}

func mustBePositive(name string, d time.Duration) {
	if d <= 0 {
		panic(fmt.Sprintf("httpserver: %s must be positive, got %s", name, d))
	}
}
