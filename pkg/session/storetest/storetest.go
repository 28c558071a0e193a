// Package storetest checks that a session.Store implementation honours the
// contract the session middleware relies on.
package storetest

import (
	"context"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

// Harness describes the store under test.
type Harness struct {
	// NewStore returns an empty store. It is called once per subtest.
	NewStore func(t *testing.T) session.Store

	// Advance moves the store's clock forward. Expiry checks are skipped
	// when it is nil.
	Advance func(d time.Duration)
}

// Run executes the conformance suite against h.
func Run(t *testing.T, h Harness) {
	t.Helper()
	require.NotNil(t, h.NewStore, "Harness.NewStore is required")

	t.Run("new returns an empty record", func(t *testing.T) {
		store := h.NewStore(t)
		data := store.New()
		require.NotNil(t, data)
		assert.Empty(t, data)
	})

	t.Run("ttl is positive whole seconds", func(t *testing.T) {
		ttl := h.NewStore(t).TTL()
		assert.Positive(t, ttl)
		assert.Zero(t, ttl%time.Second)
	})

	t.Run("get unknown id", func(t *testing.T) {
		_, err := h.NewStore(t).Get(context.Background(), "00000000-0000-0000-0000-00000000dead")
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000001"

		require.NoError(t, store.Set(ctx, id, session.Data{"user": "alice", "visits": 3}))

		data, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "alice", data["user"])
		assert.EqualValues(t, 3, toFloat(data["visits"]))
	})

	t.Run("set overwrites", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000002"

		require.NoError(t, store.Set(ctx, id, session.Data{"a": "1", "b": "2"}))
		require.NoError(t, store.Set(ctx, id, session.Data{"a": "3"}))

		data, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, session.Data{"a": "3"}, data)
	})

	t.Run("records are isolated from callers", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000003"

		in := session.Data{"k": "v"}
		require.NoError(t, store.Set(ctx, id, in))
		in["k"] = "mutated after set"

		out, err := store.Get(ctx, id)
		require.NoError(t, err)
		out["k"] = "mutated after get"

		again, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "v", again["k"])
	})

	t.Run("touch keeps the payload", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000004"

		require.NoError(t, store.Set(ctx, id, session.Data{"k": "v"}))
		require.NoError(t, store.Touch(ctx, id))

		data, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, session.Data{"k": "v"}, data)
	})

	t.Run("touch unknown id is harmless", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000005"

		assert.NoError(t, store.Touch(ctx, id))
		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, session.ErrNotFound, "touch must not create records")
	})

	t.Run("clear keeps an empty record", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000006"

		require.NoError(t, store.Set(ctx, id, session.Data{"k": "v"}))
		require.NoError(t, store.Clear(ctx, id))

		data, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("delete removes the record", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000007"

		require.NoError(t, store.Set(ctx, id, session.Data{"k": "v"}))
		require.NoError(t, store.Delete(ctx, id))

		_, err := store.Get(ctx, id)
		assert.ErrorIs(t, err, session.ErrNotFound)
		assert.NoError(t, store.Delete(ctx, id), "deleting twice is not an error")
	})

	t.Run("lister", func(t *testing.T) {
		store := h.NewStore(t)
		lister, ok := store.(session.Lister)
		if !ok {
			t.Skip("store does not implement session.Lister")
		}
		ctx := context.Background()
		ids := []string{
			"00000000-0000-0000-0000-00000000000a",
			"00000000-0000-0000-0000-00000000000b",
			"00000000-0000-0000-0000-00000000000c",
		}
		for _, id := range ids {
			require.NoError(t, store.Set(ctx, id, session.Data{}))
		}

		got, err := lister.IDs(ctx)
		require.NoError(t, err)
		slices.Sort(got)
		assert.Equal(t, ids, got)
	})

	t.Run("flush keeps live records", func(t *testing.T) {
		store := h.NewStore(t)
		flusher, ok := store.(session.Flusher)
		if !ok {
			t.Skip("store does not implement session.Flusher")
		}
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000008"

		require.NoError(t, store.Set(ctx, id, session.Data{"k": "v"}))
		require.NoError(t, flusher.FlushExpired(ctx))

		_, err := store.Get(ctx, id)
		assert.NoError(t, err)
	})

	if h.Advance == nil {
		return
	}

	t.Run("records expire after ttl", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000009"

		require.NoError(t, store.Set(ctx, id, session.Data{"k": "v"}))

		h.Advance(store.TTL())
		_, err := store.Get(ctx, id)
		require.NoError(t, err, "a record lives for the full ttl")

		h.Advance(time.Second)
		_, err = store.Get(ctx, id)
		assert.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("touch extends the lifetime", func(t *testing.T) {
		store := h.NewStore(t)
		ctx := context.Background()
		id := "00000000-0000-0000-0000-000000000010"

		require.NoError(t, store.Set(ctx, id, session.Data{"k": "v"}))

		half := store.TTL() / 2
		h.Advance(half)
		require.NoError(t, store.Touch(ctx, id))
		h.Advance(store.TTL() - time.Second)

		data, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "v", data["k"])
	})

	t.Run("flush drops expired records", func(t *testing.T) {
		store := h.NewStore(t)
		flusher, ok := store.(session.Flusher)
		if !ok {
			t.Skip("store does not implement session.Flusher")
		}
		ctx := context.Background()
		expired := "00000000-0000-0000-0000-000000000011"
		live := "00000000-0000-0000-0000-000000000012"

		require.NoError(t, store.Set(ctx, expired, session.Data{}))
		h.Advance(store.TTL() + time.Second)
		require.NoError(t, store.Set(ctx, live, session.Data{}))

		require.NoError(t, flusher.FlushExpired(ctx))

		if lister, ok := store.(session.Lister); ok {
			ids, err := lister.IDs(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{live}, ids)
		}
		_, err := store.Get(ctx, live)
		assert.NoError(t, err)
	})
}

// toFloat normalises numbers that went through a JSON round trip.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		return -1
	}
}
