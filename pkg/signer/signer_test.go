package signer_test

import (
	"crypto/sha256"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/pkg/signer"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2021, 10, 29, 19, 0, 0, 0, time.UTC)}
}

func TestNew(t *testing.T) {
	t.Run("no secrets", func(t *testing.T) {
		_, err := signer.New(nil)
		assert.ErrorIs(t, err, signer.ErrNoSecret)
	})

	t.Run("only empty secrets", func(t *testing.T) {
		_, err := signer.New([]string{"", ""})
		assert.ErrorIs(t, err, signer.ErrNoSecret)
	})
}

// Tokens must stay interchangeable with the ones minted by itsdangerous'
// TimestampSigner using its default salt, key derivation and digest.
func TestSign_KnownVectors(t *testing.T) {
	clk := newClock()
	s, err := signer.New([]string{"mysecret"}, signer.WithClock(clk.Now))
	require.NoError(t, err)

	const sid = "00000000-0000-0000-0000-000000000000"

	assert.Equal(t, sid+".YXxEsA.zADP16c9Nld1a7gz2wCIH6iYdZM", s.Sign(sid))

	clk.Advance(2 * time.Minute)
	assert.Equal(t, sid+".YXxFKA.kFPLnaCZYNyMzTjRX6Zc03HlMzY", s.Sign(sid))
}

func TestVerify_RoundTrip(t *testing.T) {
	s, err := signer.New([]string{"secret"})
	require.NoError(t, err)

	for _, value := range []string{
		"00000000-0000-0000-0000-000000000000",
		"a",
		"with.dots.inside",
		"",
		strings.Repeat("x", 512),
	} {
		got, err := s.Verify(s.Sign(value), time.Minute)
		require.NoError(t, err, value)
		assert.Equal(t, value, got)
	}
}

func TestVerify_ExpiryBoundary(t *testing.T) {
	clk := newClock()
	s, err := signer.New([]string{"secret"}, signer.WithClock(clk.Now))
	require.NoError(t, err)

	token := s.Sign("sid")
	maxAge := 300 * time.Second

	clk.Advance(maxAge)
	got, err := s.Verify(token, maxAge)
	require.NoError(t, err, "age equal to maxAge is still valid")
	assert.Equal(t, "sid", got)

	clk.Advance(time.Second)
	_, err = s.Verify(token, maxAge)
	assert.ErrorIs(t, err, signer.ErrSignatureExpired)
	assert.NotErrorIs(t, err, signer.ErrBadSignature)
}

func TestVerify_FutureTimestamp(t *testing.T) {
	clk := newClock()
	s, err := signer.New([]string{"secret"}, signer.WithClock(clk.Now))
	require.NoError(t, err)

	token := s.SignAt("sid", clk.Now().Add(time.Hour))
	_, err = s.Verify(token, time.Minute)
	assert.ErrorIs(t, err, signer.ErrSignatureExpired)
}

func TestVerify_NoMaxAge(t *testing.T) {
	clk := newClock()
	s, err := signer.New([]string{"secret"}, signer.WithClock(clk.Now))
	require.NoError(t, err)

	token := s.Sign("sid")
	clk.Advance(24 * 365 * time.Hour)

	got, err := s.Verify(token, 0)
	require.NoError(t, err)
	assert.Equal(t, "sid", got)
}

func TestVerify_TamperDetection(t *testing.T) {
	s, err := signer.New([]string{"secret"})
	require.NoError(t, err)

	token := s.Sign("00000000-0000-0000-0000-000000000001")

	for i := range len(token) {
		b := []byte(token)
		b[i] ^= 0x01
		got, err := s.Verify(string(b), time.Hour)
		assert.ErrorIs(t, err, signer.ErrBadSignature, "byte %d", i)
		assert.Empty(t, got, "byte %d", i)
	}
}

func TestVerify_Malformed(t *testing.T) {
	s, err := signer.New([]string{"secret"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "no separator", token: "abcdef"},
		{name: "signature not base64", token: "sid.YXxEsA.!!!"},
		{name: "missing timestamp", token: "sid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Verify(tt.token, time.Minute)
			assert.ErrorIs(t, err, signer.ErrBadSignature)
			assert.ErrorIs(t, err, signer.ErrMalformedToken)
		})
	}

	t.Run("validly signed payload without timestamp", func(t *testing.T) {
		// Dropping the timestamp segment invalidates the signature.
		token := s.Sign("nodot")
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		_, err = s.Verify(parts[0]+"."+parts[2], time.Minute)
		assert.ErrorIs(t, err, signer.ErrBadSignature)
	})
}

func TestVerify_WrongKey(t *testing.T) {
	a, err := signer.New([]string{"secret-a"})
	require.NoError(t, err)
	b, err := signer.New([]string{"secret-b"})
	require.NoError(t, err)

	_, err = b.Verify(a.Sign("sid"), time.Minute)
	assert.ErrorIs(t, err, signer.ErrBadSignature)
	assert.NotErrorIs(t, err, signer.ErrMalformedToken)
}

func TestVerify_KeyRotation(t *testing.T) {
	old, err := signer.New([]string{"old-secret"})
	require.NoError(t, err)
	rotated, err := signer.New([]string{"new-secret", "old-secret"})
	require.NoError(t, err)

	got, err := rotated.Verify(old.Sign("sid"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "sid", got)

	_, err = old.Verify(rotated.Sign("sid"), time.Minute)
	assert.ErrorIs(t, err, signer.ErrBadSignature, "new tokens are signed with the first secret")
}

func TestVerifyTimestamp(t *testing.T) {
	clk := newClock()
	s, err := signer.New([]string{"secret"}, signer.WithClock(clk.Now))
	require.NoError(t, err)

	value, at, err := s.VerifyTimestamp(s.Sign("sid"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "sid", value)
	assert.True(t, at.Equal(clk.Now()))
}

func TestVerify_EpochTimestamp(t *testing.T) {
	s, err := signer.New([]string{"secret"})
	require.NoError(t, err)

	token := s.SignAt("sid", time.Unix(0, 0))
	assert.Equal(t, "AA", strings.Split(token, ".")[1])

	value, at, err := s.VerifyTimestamp(token, 0)
	require.NoError(t, err)
	assert.Equal(t, "sid", value)
	assert.Equal(t, int64(0), at.Unix())
}

func TestDigest(t *testing.T) {
	sha1Signer, err := signer.New([]string{"secret"})
	require.NoError(t, err)
	sha256Signer, err := signer.New([]string{"secret"}, signer.WithDigest(sha256.New))
	require.NoError(t, err)

	token := sha256Signer.Sign("sid")
	got, err := sha256Signer.Verify(token, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "sid", got)

	_, err = sha1Signer.Verify(token, time.Minute)
	assert.ErrorIs(t, err, signer.ErrBadSignature)
}

func TestDigestByName(t *testing.T) {
	for _, name := range []string{"", "sha1", "SHA256", " sha512 "} {
		fn, err := signer.DigestByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}

	_, err := signer.DigestByName("md5")
	assert.ErrorIs(t, err, signer.ErrUnknownDigest)
}

func TestNewFromConfig(t *testing.T) {
	s, err := signer.NewFromConfig(signer.Config{
		Secrets: " new-secret , old-secret ,",
		Digest:  "sha256",
	})
	require.NoError(t, err)

	got, err := s.Verify(s.Sign("sid"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "sid", got)

	_, err = signer.NewFromConfig(signer.Config{Secrets: "x", Digest: "crc32"})
	assert.ErrorIs(t, err, signer.ErrUnknownDigest)

	_, err = signer.NewFromConfig(signer.Config{})
	assert.ErrorIs(t, err, signer.ErrNoSecret)
}
