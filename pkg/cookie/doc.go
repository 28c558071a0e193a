// Package cookie renders and parses HTTP cookies with consistent default
// attributes and a hard size limit.
//
// The Manager holds default attributes (Path, Domain, Secure, HttpOnly,
// SameSite) that every cookie it renders inherits unless overridden per call
// with an Option. Rendering goes through net/http's http.Cookie so names,
// values and attributes are validated the same way the standard library does.
//
// # Size limit
//
// Browsers only guarantee 4096 bytes per cookie. Serialize refuses to render a
// Set-Cookie value longer than MaxSize (4093) and returns ErrTooLarge at
// construction time, so an oversized cookie is never silently truncated on
// the wire.
//
// # Usage
//
//	man := cookie.New(cookie.WithSecure(true))
//
//	v, err := man.Serialize("sid", token, time.Now().Add(30*time.Minute))
//	if err != nil { return err }
//	w.Header().Add("Set-Cookie", v)
//
//	token, err := cookie.Lookup(r.Header.Get("Cookie"), "sid")
//
// # Configuration
//
// Config can be populated from the environment with github.com/caarlos0/env:
//
//	cfg := cookie.DefaultConfig()
//	_ = env.Parse(&cfg)
//	man, err := cookie.NewFromConfig(cfg)
//
// # Error Handling
//
// ErrCookieNotFound, ErrInvalidFormat, ErrInvalidCookie, ErrTooLarge and
// ErrInvalidSameSite can be matched with errors.Is.
package cookie
