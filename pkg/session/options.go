package session

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/httpsession/pkg/cookie"
)

// InvalidTokenPolicy decides what happens to a request whose session cookie
// fails verification for a reason other than expiry.
type InvalidTokenPolicy uint8

const (
	// RenewInvalidToken logs a warning and starts a fresh session.
	RenewInvalidToken InvalidTokenPolicy = iota
	// RejectInvalidToken hands the request to the error handler with a
	// 400 status.
	RejectInvalidToken
)

// RefreshPolicy decides when a known session gets a re-signed cookie.
type RefreshPolicy uint8

const (
	// RefreshAlways re-signs the cookie of every known session on every
	// response, giving sliding expiry.
	RefreshAlways RefreshPolicy = iota
	// RefreshOnAccess re-signs only when the handler accessed the session.
	RefreshOnAccess
)

// ErrorHandler writes the response for a request whose session could not be
// resolved or persisted. status is the suggested HTTP status code.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, status int, err error)

// DefaultErrorHandler writes the bare status text.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, status int, _ error) {
	http.Error(w, http.StatusText(status), status)
}

// Option is a functional option for configuring the Manager
type Option func(*Manager)

// WithCookieName sets the session cookie name (default: "sid").
func WithCookieName(name string) Option {
	return func(m *Manager) {
		m.cookieName = name
	}
}

// WithCookieManager replaces the cookie manager that renders Set-Cookie
// values. Its defaults apply unless overridden by the cookie options below.
func WithCookieManager(cm *cookie.Manager) Option {
	return func(m *Manager) {
		m.cookies = cm
	}
}

// WithPath sets the cookie Path attribute (default: "/").
func WithPath(path string) Option {
	return func(m *Manager) {
		m.cookieOpts = append(m.cookieOpts, cookie.WithPath(path))
	}
}

// WithDomain pins the cookie Domain attribute. Without it the domain is the
// request host stripped of its port. An empty domain omits the attribute.
func WithDomain(domain string) Option {
	return func(m *Manager) {
		m.domain = domain
		m.hostDomain = false
	}
}

// WithSecure sets the cookie Secure attribute.
func WithSecure(secure bool) Option {
	return func(m *Manager) {
		m.cookieOpts = append(m.cookieOpts, cookie.WithSecure(secure))
	}
}

// WithHTTPOnly sets the cookie HttpOnly attribute.
func WithHTTPOnly(httpOnly bool) Option {
	return func(m *Manager) {
		m.cookieOpts = append(m.cookieOpts, cookie.WithHTTPOnly(httpOnly))
	}
}

// WithSameSite sets the cookie SameSite attribute.
func WithSameSite(sameSite http.SameSite) Option {
	return func(m *Manager) {
		m.cookieOpts = append(m.cookieOpts, cookie.WithSameSite(sameSite))
	}
}

// WithContextKey sets the key the session is stored under in the request
// context. Use FromContextKey to read it back.
func WithContextKey(key any) Option {
	return func(m *Manager) {
		m.contextKey = key
	}
}

// WithFactory overrides how per-request session objects are built.
func WithFactory(f Factory) Option {
	return func(m *Manager) {
		m.factory = f
	}
}

// WithInvalidTokenPolicy sets the handling of tampered or corrupt cookies.
func WithInvalidTokenPolicy(p InvalidTokenPolicy) Option {
	return func(m *Manager) {
		m.invalidPolicy = p
	}
}

// WithRefreshPolicy sets when known sessions get a re-signed cookie.
func WithRefreshPolicy(p RefreshPolicy) Option {
	return func(m *Manager) {
		m.refreshPolicy = p
	}
}

// WithErrorHandler sets the handler for resolve and persist failures.
func WithErrorHandler(h ErrorHandler) Option {
	return func(m *Manager) {
		m.errorHandler = h
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithMetrics enables middleware metrics. Wrap the store with Instrument to
// get store metrics as well.
func WithMetrics(metrics *Metrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithClock sets the time source for cookie expiry. Pass the same clock to
// the signer to keep token timestamps and Expires in step.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDGenerator sets the generator for fresh session ids.
func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Manager) {
		m.newID = gen
	}
}
