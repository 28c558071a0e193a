// Package signer implements time-stamped HMAC signatures for short opaque
// values such as session identifiers.
//
// A signed token carries the value, the unix time it was signed at and an
// authentication tag over both:
//
//	00000000-0000-0000-0000-000000000000.YXxEsA.zADP16c9Nld1a7gz2wCIH6iYdZM
//
// Signing is deliberately not encryption: the value is an indirection key, not
// a secret. The token format and key derivation are compatible with the
// TimestampSigner of the Python itsdangerous library.
//
// # Usage
//
//	s, err := signer.New([]string{os.Getenv("SIGNER_SECRET")})
//	if err != nil { log.Fatal(err) }
//
//	token := s.Sign(sessionID)
//	id, err := s.Verify(token, 30*time.Minute)
//	switch {
//	case errors.Is(err, signer.ErrSignatureExpired):
//	    // renew
//	case errors.Is(err, signer.ErrBadSignature):
//	    // tampered, malformed or signed with an unknown key
//	}
//
// # Key rotation
//
// New accepts several secrets. The first one signs; all of them verify.
package signer
