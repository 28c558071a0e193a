package cookie

import (
	"errors"
	"fmt"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// MaxSize is the largest serialized Set-Cookie value accepted: the 4096
// bytes browsers guarantee minus the overhead some of them count.
const MaxSize = 4093

type Manager struct {
	defaults Options
}

// New creates a Manager. Without options cookies get Path=/, HttpOnly and
// SameSite=Lax.
func New(opts ...Option) *Manager {
	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{defaults: defaults.with(opts)}
}

// Defaults returns a copy of the default attributes.
func (m *Manager) Defaults() Options {
	return m.defaults
}

// Serialize renders a Set-Cookie header value. It fails with ErrTooLarge when
// the result exceeds MaxSize, before anything reaches the wire.
func (m *Manager) Serialize(name, value string, expires time.Time, opts ...Option) (string, error) {
	c := m.defaults.with(opts).httpCookie(name, value)
	c.Expires = expires
	return render(c)
}

// Set serializes the cookie and appends it to the response headers.
func (m *Manager) Set(w http.ResponseWriter, name, value string, expires time.Time, opts ...Option) error {
	v, err := m.Serialize(name, value, expires, opts...)
	if err != nil {
		return err
	}
	w.Header().Add("Set-Cookie", v)
	return nil
}

// Delete instructs the client to drop the cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) error {
	c := m.defaults.with(opts).httpCookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	v, err := render(c)
	if err != nil {
		return err
	}
	w.Header().Add("Set-Cookie", v)
	return nil
}

// Lookup returns the value of the named cookie from a raw Cookie header.
// Pairs that do not parse are skipped, so one broken cookie set by another
// script on the domain cannot hide the others. It returns ErrCookieNotFound
// for an empty header or a missing cookie and ErrInvalidFormat when no pair
// in the header parses at all.
func Lookup(header, name string) (string, error) {
	var (
		parsed  bool
		lastErr error
	)
	for part := range strings.SplitSeq(header, ";") {
		part = textproto.TrimString(part)
		if part == "" {
			continue
		}
		cookies, err := http.ParseCookie(part)
		if err != nil {
			lastErr = err
			continue
		}
		parsed = true
		if cookies[0].Name == name {
			return cookies[0].Value, nil
		}
	}
	if !parsed && lastErr != nil {
		return "", errors.Join(ErrInvalidFormat, lastErr)
	}
	return "", ErrCookieNotFound
}

func render(c *http.Cookie) (string, error) {
	if err := c.Valid(); err != nil {
		return "", errors.Join(ErrInvalidCookie, err)
	}
	v := c.String()
	if len(v) > MaxSize {
		return "", fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(v), MaxSize)
	}
	return v, nil
}
