package signer

import "errors"

var (
	ErrNoSecret         = errors.New("signer.no_secret")
	ErrUnknownDigest    = errors.New("signer.unknown_digest")
	ErrBadSignature     = errors.New("signer.bad_signature")
	ErrMalformedToken   = errors.New("signer.malformed_token")
	ErrSignatureExpired = errors.New("signer.signature_expired")
)
