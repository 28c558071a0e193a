package session_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/httpsession/pkg/session"
	"github.com/dmitrymomot/httpsession/pkg/signer"
)

const testSecret = "mysecret"

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2021, 10, 29, 19, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// countingStore records every call and can be told to fail.
type countingStore struct {
	*session.MemoryStore

	mu    sync.Mutex
	calls map[string]int

	getErr error
	setErr error
}

func newCountingStore(ttl time.Duration, clk *clock) *countingStore {
	return &countingStore{
		MemoryStore: session.NewMemoryStore(ttl, session.WithMemoryClock(clk.Now)),
		calls:       map[string]int{},
	}
}

func (s *countingStore) count(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
}

func (s *countingStore) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *countingStore) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *countingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = map[string]int{}
}

func (s *countingStore) Get(ctx context.Context, id string) (session.Data, error) {
	s.count("get")
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryStore.Get(ctx, id)
}

func (s *countingStore) Set(ctx context.Context, id string, data session.Data) error {
	s.count("set")
	if s.setErr != nil {
		return s.setErr
	}
	return s.MemoryStore.Set(ctx, id, data)
}

func (s *countingStore) Touch(ctx context.Context, id string) error {
	s.count("touch")
	return s.MemoryStore.Touch(ctx, id)
}

func (s *countingStore) Delete(ctx context.Context, id string) error {
	s.count("delete")
	return s.MemoryStore.Delete(ctx, id)
}

func (s *countingStore) Clear(ctx context.Context, id string) error {
	s.count("clear")
	return s.MemoryStore.Clear(ctx, id)
}

func newSigner(t testing.TB, clk *clock) *signer.Signer {
	t.Helper()
	s, err := signer.New([]string{testSecret}, signer.WithClock(clk.Now))
	require.NoError(t, err)
	return s
}

// sequentialIDs yields 00000000-0000-0000-0000-000000000000, ...001 and so on.
func sequentialIDs() session.IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := formatID(n)
		n++
		return id
	}
}

func formatID(n int) string {
	const zero = "00000000-0000-0000-0000-000000000000"
	digits := []byte(zero)
	for i := len(digits) - 1; n > 0 && i >= 0; i-- {
		if digits[i] == '-' {
			continue
		}
		digits[i] = "0123456789abcdef"[n%16]
		n /= 16
	}
	return string(digits)
}
