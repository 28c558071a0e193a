package signer

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"
	"time"
)

const (
	// DefaultSalt matches the salt of the Python itsdangerous signer, keeping
	// tokens interchangeable with deployments that used it.
	DefaultSalt = "itsdangerous.Signer"

	// Separator joins the value, the timestamp and the signature.
	Separator = '.'
)

// Option configures a Signer.
type Option func(*Signer)

// WithSalt overrides the key derivation salt. Empty values are ignored.
func WithSalt(salt string) Option {
	return func(s *Signer) {
		if salt != "" {
			s.salt = salt
		}
	}
}

// WithDigest sets the hash used both for key derivation and for the HMAC.
func WithDigest(fn func() hash.Hash) Option {
	return func(s *Signer) {
		if fn != nil {
			s.digest = fn
		}
	}
}

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// DigestByName maps a configuration value to a hash constructor.
func DigestByName(name string) (func() hash.Hash, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sha1":
		return sha1.New, nil
	case "sha256":
		return sha256.New, nil
	case "sha512":
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDigest, name)
	}
}
