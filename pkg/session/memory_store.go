package session

import (
	"context"
	"slices"
	"sync"
	"time"
)

// DefaultTTL is the session lifespan of the built-in stores when none is
// configured.
const DefaultTTL = 24 * time.Hour

// NormalizeTTL returns the lifespan a store should use for ttl: DefaultTTL
// when ttl is not positive, otherwise ttl truncated to whole seconds and
// never below one second. Token timestamps have one-second resolution.
func NormalizeTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	return max(ttl.Truncate(time.Second), time.Second)
}

type memoryEntry struct {
	data      Data
	expiresAt time.Time
}

// MemoryStore implements Store using in-process memory. Records expire one
// TTL after their last Set or Touch.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
	ticker   *time.Ticker
	done     chan struct{}
	closing  sync.Once
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryClock sets the time source used for expiry.
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *MemoryStore) {
		m.now = now
	}
}

// WithCleanupInterval starts a goroutine dropping expired records every
// interval. Call Close to stop it.
func WithCleanupInterval(interval time.Duration) MemoryOption {
	return func(m *MemoryStore) {
		if interval > 0 {
			m.ticker = time.NewTicker(interval)
		}
	}
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      NormalizeTTL(ttl),
		now:      time.Now,
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(store)
	}

	if store.ticker != nil {
		go store.cleanupLoop()
	}

	return store
}

// New returns an empty record.
func (m *MemoryStore) New() Data { return Data{} }

// TTL returns the session lifespan.
func (m *MemoryStore) TTL() time.Duration { return m.ttl }

// Get returns a copy of the record.
func (m *MemoryStore) Get(_ context.Context, id string) (Data, error) {
	m.mu.RLock()
	entry, exists := m.sessions[id]
	m.mu.RUnlock()

	if !exists || m.expired(entry) {
		return nil, ErrNotFound
	}
	return entry.data.Clone(), nil
}

// Set stores a copy of data and restarts the record's lifetime.
func (m *MemoryStore) Set(_ context.Context, id string, data Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = memoryEntry{data: data.Clone(), expiresAt: m.now().Add(m.ttl)}
	return nil
}

// Touch restarts the record's lifetime. Missing records are ignored.
func (m *MemoryStore) Touch(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.sessions[id]
	if !exists || m.expired(entry) {
		return nil
	}
	entry.expiresAt = m.now().Add(m.ttl)
	m.sessions[id] = entry
	return nil
}

// Delete removes the record.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Clear empties the record, keeping its expiry.
func (m *MemoryStore) Clear(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.sessions[id]
	if !exists {
		return nil
	}
	entry.data = Data{}
	m.sessions[id] = entry
	return nil
}

// IDs returns the ids of live records, sorted.
func (m *MemoryStore) IDs(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.sessions))
	for id, entry := range m.sessions {
		if !m.expired(entry) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// FlushExpired removes all expired records.
func (m *MemoryStore) FlushExpired(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, entry := range m.sessions {
		if m.expired(entry) {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Len returns the number of stored records, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close stops the cleanup goroutine
func (m *MemoryStore) Close() error {
	m.closing.Do(func() {
		if m.ticker != nil {
			m.ticker.Stop()
		}
		close(m.done)
	})
	return nil
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return m.now().After(e.expiresAt)
}

// cleanupLoop runs periodic cleanup of expired sessions
func (m *MemoryStore) cleanupLoop() {
	for {
		select {
		case <-m.ticker.C:
			_ = m.FlushExpired(context.Background())
		case <-m.done:
			return
		}
	}
}
