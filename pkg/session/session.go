package session

import (
	"context"
	"errors"
	"iter"
	"maps"
	"slices"
)

// loadState tracks whether the record has been materialised. The transition
// unloaded -> loaded happens once per Session and is never undone.
type loadState uint8

const (
	unloaded loadState = iota
	loaded
)

// Session is a lazily loaded, dirty-tracked view over one store record.
//
// A Session is bound to a single request: it keeps that request's context
// for the lazy load and is not safe for concurrent use. The record is read
// from the store on first access, never before.
type Session struct {
	ctx      context.Context
	id       string
	store    Store
	isNew    bool
	state    loadState
	data     Data
	modified bool
	dropped  bool
	err      error
}

// Lifecycle is what the middleware needs from a session object. *Session
// implements it; richer session types usually embed *Session.
type Lifecycle interface {
	ID() string
	IsNew() bool
	Accessed() bool
	Persist(force bool) error
}

// discarder is implemented by *Session and every type embedding it.
type discarder interface {
	discard()
}

// Factory builds the per-request session object. Override it with
// WithFactory to hand handlers a richer type.
type Factory func(ctx context.Context, id string, store Store, isNew bool) Lifecycle

// NewSession returns an unloaded session for id.
func NewSession(ctx context.Context, id string, store Store, isNew bool) *Session {
	return &Session{ctx: ctx, id: id, store: store, isNew: isNew}
}

// DefaultFactory builds plain *Session values.
func DefaultFactory(ctx context.Context, id string, store Store, isNew bool) Lifecycle {
	return NewSession(ctx, id, store, isNew)
}

// Base returns s. Types embedding *Session inherit it, which lets
// FromContext find the underlying session of any richer type.
func (s *Session) Base() *Session { return s }

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// IsNew reports whether the session has no record in the store yet.
func (s *Session) IsNew() bool { return s.isNew }

// Accessed reports whether the record has been materialised.
func (s *Session) Accessed() bool { return s.state == loaded }

// Modified reports whether the session has changes that are not persisted.
func (s *Session) Modified() bool { return s.modified }

// Discarded reports whether the session was destroyed during this request.
func (s *Session) Discarded() bool { return s.dropped }

func (s *Session) discard() { s.dropped = true }

// Err returns the error of a failed lazy load, if any.
func (s *Session) Err() error { return s.err }

// Load materialises the record now and reports any store error. Accessors
// call it implicitly; calling it explicitly is only needed to see the error.
func (s *Session) Load() error {
	s.load()
	return s.err
}

func (s *Session) load() bool {
	if s.state == loaded {
		return true
	}
	if s.err != nil {
		return false
	}

	if s.isNew {
		s.data = s.store.New()
		s.state = loaded
		return true
	}

	data, err := s.store.Get(s.ctx, s.id)
	switch {
	case errors.Is(err, ErrNotFound):
		// A correctly signed id whose record is gone starts over empty.
		s.isNew = true
		data = s.store.New()
	case err != nil:
		s.err = err
		return false
	}
	if data == nil {
		data = s.store.New()
	}

	s.data = data
	s.state = loaded
	return true
}

// Get returns the value stored under key.
func (s *Session) Get(key string) (any, bool) {
	if !s.load() {
		return nil, false
	}
	v, ok := s.data[key]
	return v, ok
}

// GetString retrieves a string value from session data
func (s *Session) GetString(key string) (string, bool) {
	val, ok := s.Get(key)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetInt retrieves an int value. JSON-decoded numbers (float64) are accepted.
func (s *Session) GetInt(key string) (int, bool) {
	val, ok := s.Get(key)
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// GetBool retrieves a bool value from session data
func (s *Session) GetBool(key string) (bool, bool) {
	val, ok := s.Get(key)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// Has reports whether key is present.
func (s *Session) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of keys.
func (s *Session) Len() int {
	if !s.load() {
		return 0
	}
	return len(s.data)
}

// Keys returns the keys in sorted order.
func (s *Session) Keys() []string {
	if !s.load() {
		return nil
	}
	return slices.Sorted(maps.Keys(s.data))
}

// All iterates over the key/value pairs in unspecified order.
func (s *Session) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if !s.load() {
			return
		}
		for k, v := range s.data {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Set stores value under key and marks the session modified. It is a no-op
// when the record could not be loaded; see Err.
func (s *Session) Set(key string, value any) {
	if !s.load() {
		return
	}
	s.data[key] = value
	s.modified = true
}

// Delete removes key and marks the session modified.
func (s *Session) Delete(key string) {
	if !s.load() {
		return
	}
	delete(s.data, key)
	s.modified = true
}

// Clear removes every key and marks the session modified.
func (s *Session) Clear() {
	if !s.load() {
		return
	}
	clear(s.data)
	s.modified = true
}

// Save marks the session modified without changing it. Use it after mutating
// a stored value in place (appending to a stored slice, say), which the
// session cannot observe.
func (s *Session) Save() {
	s.modified = true
}

// Persist writes the session back to the store:
//
//   - force, modified, or a new session that was accessed: Set, then the
//     session is clean again;
//   - accessed but unchanged: Touch, extending the record's lifetime
//     without rewriting it;
//   - never accessed, or destroyed: nothing.
func (s *Session) Persist(force bool) error {
	if s.dropped {
		return nil
	}
	if s.err != nil {
		return s.err
	}

	if force || s.modified || (s.isNew && s.state == loaded) {
		if !s.load() {
			return s.err
		}
		if err := s.store.Set(s.ctx, s.id, s.data); err != nil {
			return err
		}
		s.modified = false
		s.isNew = false
		return nil
	}

	if s.state == loaded {
		return s.store.Touch(s.ctx, s.id)
	}

	return nil
}
