package session

import (
	"context"
	"maps"
	"time"
)

// Data is the payload of one session record. Values must survive the
// configured Codec; with the default JSON codec numbers come back as float64.
type Data map[string]any

// Clone returns a shallow copy. Stores use it to keep their records isolated
// from the maps handed to callers.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	c := make(Data, len(d))
	maps.Copy(c, d)
	return c
}

// Store is the durable backend keyed by session id. It is the single source
// of truth between requests; the request path performs at most one Get and
// one Set or Touch per request.
type Store interface {
	// New returns an empty record for a brand-new session.
	New() Data

	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, id string) (Data, error)

	// Set upserts the record and resets its lifetime.
	Set(ctx context.Context, id string, data Data) error

	// Touch extends the lifetime without rewriting the payload. Backends for
	// which that is meaningless may do nothing.
	Touch(ctx context.Context, id string) error

	// Delete removes the record.
	Delete(ctx context.Context, id string) error

	// Clear empties the payload while keeping the record.
	Clear(ctx context.Context, id string) error

	// TTL is the session lifespan. It drives token max age and cookie expiry.
	TTL() time.Duration
}

// Lister is implemented by stores able to enumerate their session ids.
type Lister interface {
	IDs(ctx context.Context) ([]string, error)
}

// Flusher is implemented by stores that need an explicit sweep to drop
// expired records. It is meant for a scheduler, never the request path.
type Flusher interface {
	FlushExpired(ctx context.Context) error
}
