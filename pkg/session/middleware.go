package session

import (
	"bufio"
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/dmitrymomot/httpsession/pkg/logger"
)

// Middleware attaches a lazily loaded session to every request and writes
// it back right before the response headers are sent: modified or newly
// used sessions are stored, merely read ones are touched, and known sessions
// get a re-signed cookie carrying a fresh expiry.
//
// A new session the handler never used causes no store I/O and no cookie.
// When the session cannot be persisted the response is replaced by the
// error handler and whatever the handler writes afterwards is discarded.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Open(r.Context(), strings.Join(r.Header.Values("Cookie"), "; "))
		if err != nil {
			m.logger.WarnContext(r.Context(), "rejected invalid session cookie", logger.Error(err))
			m.errorHandler(w, r, http.StatusBadRequest, err)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), m.contextKey, sess))

		rw := &responseWriter{ResponseWriter: w}
		rw.before = func() bool {
			if err := m.commit(r, w.Header(), sess); err != nil {
				m.logger.ErrorContext(r.Context(), "failed to persist session",
					logger.SessionID(sess.ID()),
					logger.Error(err),
				)
				m.errorHandler(w, r, http.StatusInternalServerError, err)
				return false
			}
			return true
		}

		next.ServeHTTP(rw, r)

		// Responses the handler left empty still carry the cookie.
		rw.prepare()
	})
}

// commit persists sess and adds its cookie to h.
func (m *Manager) commit(r *http.Request, h http.Header, sess Lifecycle) error {
	if r.Context().Err() != nil {
		return nil
	}
	if d, ok := sess.(interface{ Discarded() bool }); ok && d.Discarded() {
		return nil
	}

	wasNew := sess.IsNew()
	if err := sess.Persist(false); err != nil {
		return err
	}

	switch {
	case sess.IsNew():
		// Nothing was written: there is no record for a cookie to point at.
		return nil
	case !sess.Accessed() && m.refreshPolicy == RefreshOnAccess:
		return nil
	}

	value, err := m.serialize(sess.ID(), m.requestCookieOptions(r))
	if err != nil {
		return err
	}
	h.Add("Set-Cookie", value)

	m.metrics.cookieWritten()
	if wasNew {
		m.metrics.sessionIssued()
	}
	return nil
}

// responseWriter runs before exactly once, ahead of the first byte or status
// line reaching the client.
type responseWriter struct {
	http.ResponseWriter
	before  func() bool
	done    bool
	aborted bool
}

func (rw *responseWriter) prepare() bool {
	if !rw.done {
		rw.done = true
		rw.aborted = !rw.before()
	}
	return !rw.aborted
}

func (rw *responseWriter) WriteHeader(code int) {
	// Informational responses leave the final headers open.
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		if !rw.done {
			rw.ResponseWriter.WriteHeader(code)
		}
		return
	}
	if rw.prepare() {
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.prepare() {
		return 0, ErrResponseAborted
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Flush() {
	if !rw.prepare() {
		return
	}
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if !rw.prepare() {
		return nil, nil, ErrResponseAborted
	}
	return http.NewResponseController(rw.ResponseWriter).Hijack()
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
