package session

import "errors"

var (
	// ErrNotFound is returned by a Store when no record exists for an id.
	ErrNotFound = errors.New("session.not_found")

	// ErrInvalidToken indicates a session cookie that failed verification for
	// a reason other than expiry: tampering, corruption or an unknown key.
	ErrInvalidToken = errors.New("session.invalid_token")

	// ErrInvalidID is returned by stores for ids they cannot address safely.
	ErrInvalidID = errors.New("session.invalid_id")

	// ErrNotInContext is returned when no session is attached to a context.
	ErrNotInContext = errors.New("session.not_in_context")

	// ErrCodec wraps payload encoding and decoding failures.
	ErrCodec = errors.New("session.codec")

	// ErrResponseAborted is returned from Write after the session could not be
	// persisted and the response was replaced by the error handler.
	ErrResponseAborted = errors.New("session.response_aborted")

	// ErrInsecureSameSiteNone rejects SameSite=None without Secure; browsers
	// drop such cookies.
	ErrInsecureSameSiteNone = errors.New("session.insecure_same_site_none")
)
