package session

import "context"

// baser is implemented by *Session and every type embedding it.
type baser interface {
	Base() *Session
}

// FromContext returns the session the middleware attached under the default
// context key. Richer session types embedding *Session are unwrapped.
func FromContext(ctx context.Context) (*Session, bool) {
	return FromContextKey(ctx, sessionContextKey{})
}

// FromContextKey is FromContext for managers configured with WithContextKey.
func FromContextKey(ctx context.Context, key any) (*Session, bool) {
	b, ok := ctx.Value(key).(baser)
	if !ok {
		return nil, false
	}
	return b.Base(), true
}

// As returns the session object stored under key as T. Use it with
// WithFactory to get the concrete session type back.
func As[T any](ctx context.Context, key any) (T, bool) {
	v, ok := ctx.Value(key).(T)
	return v, ok
}

// MustFromContext retrieves a session from the context or panics
func MustFromContext(ctx context.Context) *Session {
	session, ok := FromContext(ctx)
	if !ok {
		panic(ErrNotInContext)
	}
	return session
}

// WithSession attaches s to ctx under the default key. The middleware does
// this itself; the function exists for tests and background jobs.
func WithSession(ctx context.Context, s Lifecycle) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}
