package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

// Store keeps sessions in the http_sessions table created by Open. Expiry is
// stored as Unix nanoseconds.
type Store struct {
	db    *sql.DB
	ttl   time.Duration
	now   func() time.Time
	codec session.Codec
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithClock sets the time source used to compute and check expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// WithCodec replaces the JSON encoding of payloads.
func WithCodec(c session.Codec) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.codec = c
		}
	}
}

// NewStore creates a Store on db.
func NewStore(db *sql.DB, ttl time.Duration, opts ...StoreOption) *Store {
	s := &Store{
		db:    db,
		ttl:   session.NormalizeTTL(ttl),
		now:   time.Now,
		codec: session.JSONCodec{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New returns an empty record.
func (s *Store) New() session.Data { return session.Data{} }

// TTL returns the session lifespan.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns session.ErrNotFound for missing or expired rows.
func (s *Store) Get(ctx context.Context, id string) (session.Data, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM http_sessions WHERE id = ? AND expires_at >= ?`,
		id, s.now().UnixNano(),
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.codec.Unmarshal(raw)
}

// Set upserts the row with a fresh expiry.
func (s *Store) Set(ctx context.Context, id string, data session.Data) error {
	raw, err := s.codec.Marshal(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO http_sessions (id, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		id, raw, s.now().Add(s.ttl).UnixNano(),
	)
	return err
}

// Touch moves the expiry of a live row forward.
func (s *Store) Touch(ctx context.Context, id string) error {
	now := s.now()
	_, err := s.db.ExecContext(ctx,
		`UPDATE http_sessions SET expires_at = ? WHERE id = ? AND expires_at >= ?`,
		now.Add(s.ttl).UnixNano(), id, now.UnixNano(),
	)
	return err
}

// Delete removes the row.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM http_sessions WHERE id = ?`, id)
	return err
}

// Clear empties the payload and keeps the expiry.
func (s *Store) Clear(ctx context.Context, id string) error {
	raw, err := s.codec.Marshal(session.Data{})
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `UPDATE http_sessions SET data = ? WHERE id = ?`, raw, id)
	return err
}

// IDs returns the ids of live rows, sorted.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM http_sessions WHERE expires_at >= ? ORDER BY id`,
		s.now().UnixNano(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// FlushExpired deletes expired rows.
func (s *Store) FlushExpired(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM http_sessions WHERE expires_at < ?`, s.now().UnixNano())
	return err
}
