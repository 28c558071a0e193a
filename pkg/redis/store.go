package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

// Store keeps each session as one key holding the encoded record. Expiry is
// native: Set writes with EX, Touch issues EXPIRE. No sweeping is needed, so
// Store does not implement session.Flusher.
type Store struct {
	db            redis.UniversalClient
	ttl           time.Duration
	prefix        string
	scanBatchSize int64
	codec         session.Codec
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix sets the prefix of session keys. Defaults to "session:".
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithScanBatchSize sets the COUNT hint used by IDs.
func WithScanBatchSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.scanBatchSize = int64(n)
		}
	}
}

// WithCodec replaces the JSON encoding of records.
func WithCodec(c session.Codec) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// NewStore creates a session store on top of client.
func NewStore(client redis.UniversalClient, ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		db:            client,
		ttl:           session.NormalizeTTL(ttl),
		prefix:        "session:",
		scanBatchSize: 1000,
		codec:         session.JSONCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStoreFromConfig creates a Store using the key layout from cfg.
func NewStoreFromConfig(client redis.UniversalClient, cfg Config, ttl time.Duration, opts ...StoreOption) *Store {
	base := []StoreOption{
		WithKeyPrefix(cfg.KeyPrefix),
		WithScanBatchSize(cfg.ScanBatchSize),
	}
	return NewStore(client, ttl, append(base, opts...)...)
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// New returns an empty record.
func (s *Store) New() session.Data { return session.Data{} }

// TTL returns the session lifespan.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns session.ErrNotFound for missing or expired keys.
func (s *Store) Get(ctx context.Context, id string) (session.Data, error) {
	b, err := s.db.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.codec.Unmarshal(b)
}

// Set writes the record with a fresh expiry.
func (s *Store) Set(ctx context.Context, id string, data session.Data) error {
	b, err := s.codec.Marshal(data)
	if err != nil {
		return err
	}
	return s.db.Set(ctx, s.key(id), b, s.ttl).Err()
}

// Touch resets the expiry. Missing keys are left alone.
func (s *Store) Touch(ctx context.Context, id string) error {
	return s.db.Expire(ctx, s.key(id), s.ttl).Err()
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.db.Del(ctx, s.key(id)).Err()
}

// Clear replaces the payload with an empty record, keeping the remaining
// lifetime. Missing keys are left alone.
func (s *Store) Clear(ctx context.Context, id string) error {
	b, err := s.codec.Marshal(session.Data{})
	if err != nil {
		return err
	}
	err = s.db.SetArgs(ctx, s.key(id), b, redis.SetArgs{Mode: "XX", KeepTTL: true}).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}

// IDs lists session ids using SCAN so the server is never blocked.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	var (
		ids    []string
		cursor uint64
	)
	for {
		batch, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range batch {
			ids = append(ids, strings.TrimPrefix(key, s.prefix))
		}
		if cursor = next; cursor == 0 {
			return ids, nil
		}
	}
}

// Conn returns the underlying client.
func (s *Store) Conn() redis.UniversalClient {
	return s.db
}
