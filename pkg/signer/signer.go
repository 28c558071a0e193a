package signer

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"hash"
	"slices"
	"strings"
	"time"
)

// encoding rejects non-zero padding bits, so every signature has exactly one
// accepted textual form.
var encoding = base64.RawURLEncoding.Strict()

// Signer produces and verifies time-stamped, HMAC-signed tokens of the form
//
//	value.timestamp.signature
//
// Both timestamp and signature are unpadded URL-safe base64. The signature
// covers "value.timestamp", so neither part can be altered independently.
//
// A Signer is immutable after construction and safe for concurrent use.
type Signer struct {
	salt   string
	digest func() hash.Hash
	now    func() time.Time
	keys   [][]byte
}

// New creates a Signer. The first secret signs new tokens; every secret is
// accepted during verification so keys can be rotated without logging users out.
func New(secrets []string, opts ...Option) (*Signer, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })
	if len(secrets) == 0 {
		return nil, ErrNoSecret
	}

	s := &Signer{
		salt:   DefaultSalt,
		digest: sha1.New,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.keys = make([][]byte, len(secrets))
	for i, secret := range secrets {
		s.keys[i] = s.deriveKey(secret)
	}

	return s, nil
}

// Sign returns value signed with the current time.
func (s *Signer) Sign(value string) string {
	return s.SignAt(value, s.now())
}

// SignAt returns value signed with the given time.
func (s *Signer) SignAt(value string, at time.Time) string {
	payload := value + string(Separator) + encodeTimestamp(at.Unix())
	return payload + string(Separator) + s.signature(s.keys[0], payload)
}

// Verify checks the token signature and age and returns the original value.
// A maxAge <= 0 disables the age check.
func (s *Signer) Verify(token string, maxAge time.Duration) (string, error) {
	value, _, err := s.VerifyTimestamp(token, maxAge)
	return value, err
}

// VerifyTimestamp is like Verify but also returns the signing time.
func (s *Signer) VerifyTimestamp(token string, maxAge time.Duration) (string, time.Time, error) {
	sep := strings.LastIndexByte(token, Separator)
	if sep < 0 {
		return "", time.Time{}, errors.Join(ErrBadSignature, ErrMalformedToken)
	}
	payload, sig := token[:sep], token[sep+1:]

	mac, err := encoding.DecodeString(sig)
	if err != nil {
		return "", time.Time{}, errors.Join(ErrBadSignature, ErrMalformedToken)
	}
	if !s.verifySignature(payload, mac) {
		return "", time.Time{}, ErrBadSignature
	}

	sep = strings.LastIndexByte(payload, Separator)
	if sep < 0 {
		return "", time.Time{}, errors.Join(ErrBadSignature, ErrMalformedToken)
	}
	value, rawTS := payload[:sep], payload[sep+1:]

	ts, ok := decodeTimestamp(rawTS)
	if !ok {
		return "", time.Time{}, errors.Join(ErrBadSignature, ErrMalformedToken)
	}
	signedAt := time.Unix(ts, 0)

	if maxAge > 0 {
		age := s.now().Unix() - ts
		if age > int64(maxAge/time.Second) || age < 0 {
			return "", signedAt, ErrSignatureExpired
		}
	}

	return value, signedAt, nil
}

// verifySignature tries every key. hmac.Equal keeps the comparison constant-time.
func (s *Signer) verifySignature(payload string, mac []byte) bool {
	for _, key := range s.keys {
		h := hmac.New(s.digest, key)
		h.Write([]byte(payload))
		if hmac.Equal(mac, h.Sum(nil)) {
			return true
		}
	}
	return false
}

func (s *Signer) signature(key []byte, payload string) string {
	h := hmac.New(s.digest, key)
	h.Write([]byte(payload))
	return encoding.EncodeToString(h.Sum(nil))
}

// deriveKey hashes salt + "signer" + secret.
func (s *Signer) deriveKey(secret string) []byte {
	h := s.digest()
	h.Write([]byte(s.salt))
	h.Write([]byte("signer"))
	h.Write([]byte(secret))
	return h.Sum(nil)
}

// encodeTimestamp encodes ts as its minimal big-endian byte form. Zero
// takes one byte so the segment is never empty.
func encodeTimestamp(ts int64) string {
	var buf [8]byte
	n := 1
	for v := uint64(ts) >> 8; v > 0; v >>= 8 {
		n++
	}
	for i := range n {
		buf[n-1-i] = byte(uint64(ts) >> (8 * i))
	}
	return encoding.EncodeToString(buf[:n])
}

func decodeTimestamp(raw string) (int64, bool) {
	b, err := encoding.DecodeString(raw)
	if err != nil || len(b) == 0 || len(b) > 8 {
		return 0, false
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	if v > 1<<62 {
		return 0, false
	}
	return int64(v), true
}
