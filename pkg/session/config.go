package session

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/httpsession/pkg/cookie"
)

// Config holds session configuration
type Config struct {
	// CookieName is the name of the session cookie (default: "sid")
	CookieName string `env:"SESSION_COOKIE_NAME" envDefault:"sid"`

	CookiePath string `env:"SESSION_COOKIE_PATH" envDefault:"/"`

	// CookieDomain pins the Domain attribute. Empty means the request host.
	CookieDomain string `env:"SESSION_COOKIE_DOMAIN" envDefault:""`

	CookieSecure   bool   `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool   `env:"SESSION_COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"SESSION_COOKIE_SAME_SITE" envDefault:"lax"`

	// TTL is the session lifespan handed to the built-in stores.
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// RejectInvalid answers 400 to tampered cookies instead of renewing.
	RejectInvalid bool `env:"SESSION_REJECT_INVALID" envDefault:"false"`

	// RefreshOnAccess re-signs cookies only for sessions the handler used.
	RefreshOnAccess bool `env:"SESSION_REFRESH_ON_ACCESS" envDefault:"false"`

	// Store selects the backend: memory, file, redis, postgres, mongo or sqlite.
	Store string `env:"SESSION_STORE" envDefault:"memory"`

	// SweepInterval for expired sessions (0 to disable)
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"5m"`
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		CookieName:     DefaultCookieName,
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: "lax",
		TTL:            DefaultTTL,
		Store:          "memory",
		SweepInterval:  DefaultSweepInterval,
	}
}

// Options converts the configuration to Manager options.
func (c Config) Options() ([]Option, error) {
	sameSite, err := cookie.ParseSameSite(c.CookieSameSite)
	if err != nil {
		return nil, err
	}
	if sameSite == http.SameSiteNoneMode && !c.CookieSecure {
		return nil, ErrInsecureSameSiteNone
	}

	opts := []Option{
		WithSecure(c.CookieSecure),
		WithHTTPOnly(c.CookieHTTPOnly),
		WithSameSite(sameSite),
	}
	if c.CookieName != "" {
		opts = append(opts, WithCookieName(c.CookieName))
	}
	if c.CookiePath != "" {
		opts = append(opts, WithPath(c.CookiePath))
	}
	if c.CookieDomain != "" {
		opts = append(opts, WithDomain(c.CookieDomain))
	}
	if c.RejectInvalid {
		opts = append(opts, WithInvalidTokenPolicy(RejectInvalidToken))
	}
	if c.RefreshOnAccess {
		opts = append(opts, WithRefreshPolicy(RefreshOnAccess))
	}
	return opts, nil
}

// NewFromConfig creates a new Manager from the provided Config. Options
// passed explicitly take precedence over the configuration.
func NewFromConfig(cfg Config, store Store, signer TokenSigner, opts ...Option) (*Manager, error) {
	configOpts, err := cfg.Options()
	if err != nil {
		return nil, err
	}
	return New(store, signer, append(configOpts, opts...)...), nil
}
