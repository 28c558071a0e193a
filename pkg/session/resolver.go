package session

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/httpsession/pkg/cookie"
	"github.com/dmitrymomot/httpsession/pkg/signer"
)

// TokenSigner signs session ids and verifies signed tokens.
// *signer.Signer implements it.
type TokenSigner interface {
	Sign(id string) string
	Verify(token string, maxAge time.Duration) (string, error)
}

// IDGenerator returns a fresh, unguessable session id.
type IDGenerator func() string

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.NewString()
}

// Resolver turns an incoming Cookie header into a session identity.
type Resolver struct {
	signer     TokenSigner
	cookieName string
	maxAge     time.Duration
	newID      IDGenerator
}

// NewResolver creates a Resolver that reads cookieName and accepts tokens
// no older than maxAge.
func NewResolver(s TokenSigner, cookieName string, maxAge time.Duration, newID IDGenerator) *Resolver {
	if newID == nil {
		newID = NewID
	}
	return &Resolver{
		signer:     s,
		cookieName: cookieName,
		maxAge:     maxAge,
		newID:      newID,
	}
}

// Resolve returns the session identity carried by header.
//
// A missing header, a missing cookie, an unparsable header and an expired
// token all yield a fresh id with isNew set. A token that fails verification
// for any other reason yields an error wrapping ErrInvalidToken; the caller
// decides whether that rejects the request.
func (r *Resolver) Resolve(header string) (isNew bool, id string, err error) {
	token, err := cookie.Lookup(header, r.cookieName)
	if err != nil {
		return true, r.newID(), nil
	}

	id, err = r.signer.Verify(token, r.maxAge)
	switch {
	case err == nil:
		return false, id, nil
	case errors.Is(err, signer.ErrSignatureExpired):
		return true, r.newID(), nil
	default:
		return false, "", errors.Join(ErrInvalidToken, err)
	}
}

// ResolveRequest resolves the identity from all Cookie headers of req.
func (r *Resolver) ResolveRequest(req *http.Request) (isNew bool, id string, err error) {
	return r.Resolve(strings.Join(req.Header.Values("Cookie"), "; "))
}

// NewID returns a fresh id from the configured generator.
func (r *Resolver) NewID() string {
	return r.newID()
}
