package session

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/dmitrymomot/httpsession/pkg/cookie"
	"github.com/dmitrymomot/httpsession/pkg/logger"
)

// DefaultCookieName is the session cookie name used unless overridden.
const DefaultCookieName = "sid"

type sessionContextKey struct{}

// Manager ties a Store and a TokenSigner to HTTP: it resolves the session
// of every request from its cookie and writes the session back, with a
// re-signed cookie, right before the response headers go out.
type Manager struct {
	store      Store
	signer     TokenSigner
	resolver   *Resolver
	cookies    *cookie.Manager
	cookieOpts []cookie.Option
	cookieName string
	domain     string
	hostDomain bool

	contextKey    any
	factory       Factory
	invalidPolicy InvalidTokenPolicy
	refreshPolicy RefreshPolicy
	errorHandler  ErrorHandler
	logger        *slog.Logger
	metrics       *Metrics
	now           func() time.Time
	newID         IDGenerator
}

// New creates a session manager. The store's TTL is the session lifespan:
// it bounds the token age and sets the cookie expiry.
// It panics when store or signer is nil.
func New(store Store, signer TokenSigner, opts ...Option) *Manager {
	if store == nil {
		panic("session: store is required")
	}
	if signer == nil {
		panic("session: signer is required")
	}

	m := &Manager{
		store:        store,
		signer:       signer,
		cookieName:   DefaultCookieName,
		hostDomain:   true,
		contextKey:   sessionContextKey{},
		factory:      DefaultFactory,
		errorHandler: DefaultErrorHandler,
		logger:       slog.New(slog.DiscardHandler),
		now:          time.Now,
		newID:        NewID,
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.cookies == nil {
		m.cookies = cookie.New()
	}
	m.logger = m.logger.With(logger.Component("session"))
	m.resolver = NewResolver(signer, m.cookieName, store.TTL(), m.newID)

	return m
}

// Store returns the backing store.
func (m *Manager) Store() Store { return m.store }

// CookieName returns the session cookie name.
func (m *Manager) CookieName() string { return m.cookieName }

// ContextKey returns the key sessions are attached to request contexts with.
func (m *Manager) ContextKey() any { return m.contextKey }

// Open resolves the session carried by a raw Cookie header. The returned
// session is unloaded; nothing touches the store until it is accessed.
//
// A cookie failing verification yields a fresh session, or an error
// wrapping ErrInvalidToken under RejectInvalidToken.
func (m *Manager) Open(ctx context.Context, cookieHeader string) (Lifecycle, error) {
	isNew, id, err := m.resolver.Resolve(cookieHeader)
	if err != nil {
		if m.invalidPolicy == RejectInvalidToken {
			m.metrics.invalidToken("rejected")
			return nil, err
		}
		m.metrics.invalidToken("renewed")
		m.logger.WarnContext(ctx, "invalid session cookie, starting a new session", logger.Error(err))
		isNew, id = true, m.resolver.NewID()
	}

	return m.factory(ctx, id, m.store, isNew), nil
}

// Cookie returns a Set-Cookie value carrying id signed at the current time
// and expiring one TTL from now. Empty path or domain fall back to the
// configured ones. It fails with cookie.ErrTooLarge for oversize cookies.
func (m *Manager) Cookie(id, path, domain string) (string, error) {
	opts := slices.Clone(m.cookieOpts)
	if path != "" {
		opts = append(opts, cookie.WithPath(path))
	}
	if domain == "" {
		domain = m.domain
	}
	opts = append(opts, cookie.WithDomain(domain))

	return m.serialize(id, opts)
}

// Destroy deletes the session record and instructs the client to drop the
// cookie. The middleware neither persists nor re-issues a destroyed session.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request, sess Lifecycle) error {
	if d, ok := sess.(discarder); ok {
		d.discard()
	}

	if err := m.store.Delete(r.Context(), sess.ID()); err != nil {
		return err
	}

	return m.cookies.Delete(w, m.cookieName, m.requestCookieOptions(r)...)
}

func (m *Manager) serialize(id string, opts []cookie.Option) (string, error) {
	expires := m.now().Add(m.store.TTL())
	return m.cookies.Serialize(m.cookieName, m.signer.Sign(id), expires, opts...)
}

// requestCookieOptions returns the cookie attributes for a response to r.
func (m *Manager) requestCookieOptions(r *http.Request) []cookie.Option {
	domain := m.domain
	if m.hostDomain {
		domain = requestDomain(r.Host)
	}
	return append(slices.Clone(m.cookieOpts), cookie.WithDomain(domain))
}

// requestDomain strips the port from host. Hosts that are not valid cookie
// domains, such as IPv6 literals, yield no Domain attribute.
func requestDomain(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		return ""
	}
	c := &http.Cookie{Name: "d", Domain: host}
	if c.Valid() != nil {
		return ""
	}
	return host
}
