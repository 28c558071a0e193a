package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/httpsession/pkg/logger"
)

// Check probes one dependency, such as the session store connection.
type Check func(ctx context.Context) error

// HealthCheckHandler returns a HTTP handler for liveness and readiness probes.
//
//   - Liveness: without checks the handler returns 200 OK with body "ALIVE".
//   - Readiness: every check runs with the request context; if all succeed
//     the handler returns 200 OK with body "READY", otherwise 503 Service
//     Unavailable with body "NOT_READY".
func HealthCheckHandler(log *slog.Logger, checks ...Check) http.HandlerFunc {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")

		if len(checks) == 0 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ALIVE"))
			return
		}

		for _, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed", logger.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("NOT_READY"))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("READY"))
	}
}
