package cookie

import "errors"

var (
	ErrCookieNotFound  = errors.New("cookie.not_found")
	ErrInvalidFormat   = errors.New("cookie.invalid_format")
	ErrInvalidCookie   = errors.New("cookie.invalid")
	ErrTooLarge        = errors.New("cookie.too_large")
	ErrInvalidSameSite = errors.New("cookie.invalid_same_site")
)
