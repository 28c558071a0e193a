package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/httpsession/pkg/httpserver"
	"github.com/dmitrymomot/httpsession/pkg/logger"
	"github.com/dmitrymomot/httpsession/pkg/requestid"
	"github.com/dmitrymomot/httpsession/pkg/session"
)

// newRouter mounts the demo application behind the session middleware next
// to the probe and metrics endpoints, which never touch sessions.
func newRouter(m *session.Manager, gatherer prometheus.Gatherer, log *slog.Logger, checks ...httpserver.Check) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware, middleware.RealIP, middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(log))
	r.Get("/readyz", httpserver.HealthCheckHandler(log, checks...))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(m.Middleware)

		r.Get("/", countVisits)
		r.Get("/session", showSession)
		r.Post("/session", updateSession)
		r.Post("/logout", logout(m, log))
	})

	return r
}

func countVisits(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	n, _ := sess.GetInt("visits")
	sess.Set("visits", n+1)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "visit #%d\n", n+1)
}

func showSession(w http.ResponseWriter, r *http.Request) {
	sess := session.MustFromContext(r.Context())
	data := make(map[string]any, sess.Len())
	for k, v := range sess.All() {
		data[k] = v
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":   sess.ID(),
		"new":  sess.IsNew(),
		"data": data,
	})
}

// updateSession stores every posted form field as a string value.
func updateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := session.MustFromContext(r.Context())
	for key, values := range r.PostForm {
		if len(values) > 0 {
			sess.Set(key, values[0])
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func logout(m *session.Manager, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Destroy(w, r, session.MustFromContext(r.Context())); err != nil {
			log.ErrorContext(r.Context(), "failed to destroy session", logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
