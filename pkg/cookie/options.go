package cookie

import "net/http"

// Options are the cookie attributes a Manager renders besides name, value
// and expiry.
type Options struct {
	Path     string
	Domain   string // empty omits the attribute; the browser scopes to the host
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option overrides one attribute, either on the Manager defaults or for a
// single Serialize, Set or Delete call.
type Option func(*Options)

// WithPath sets the Path attribute.
func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

// WithDomain sets the Domain attribute.
func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(sameSite http.SameSite) Option {
	return func(o *Options) { o.SameSite = sameSite }
}

// with returns o overridden by opts. The receiver is a copy, so the
// Manager defaults never change.
func (o Options) with(opts []Option) Options {
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// httpCookie builds the http.Cookie carrying these attributes.
func (o Options) httpCookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		Secure:   o.Secure,
		HttpOnly: o.HttpOnly,
		SameSite: o.SameSite,
	}
}
