package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/httpsession/pkg/session"
)

// DB is the subset of *pgxpool.Pool used by Store. A pgx.Tx satisfies it
// too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store keeps sessions in the http_sessions table created by Migrate.
// Expired rows stay until FlushExpired removes them; they are invisible to
// every other method in the meantime.
type Store struct {
	db    DB
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

// NewStore creates a Store on top of db. Run Migrate first.
func NewStore(db DB, ttl time.Duration, opts ...StoreOption) *Store {
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
	err := s.db.QueryRow(ctx,
		`SELECT data FROM http_sessions WHERE id = $1 AND expires_at >= $2`,
		id, s.now(),
	).Scan(&raw)
	if IsNotFoundError(err) {
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
	_, err = s.db.Exec(ctx,
		`INSERT INTO http_sessions (id, data, expires_at) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		id, raw, s.now().Add(s.ttl),
	)
	return err
}

// Touch moves the expiry of a live row forward.
func (s *Store) Touch(ctx context.Context, id string) error {
	now := s.now()
	_, err := s.db.Exec(ctx,
		`UPDATE http_sessions SET expires_at = $2 WHERE id = $1 AND expires_at >= $3`,
		id, now.Add(s.ttl), now,
	)
	return err
}

// Delete removes the row.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM http_sessions WHERE id = $1`, id)
	return err
}

// Clear empties the payload and keeps the expiry.
func (s *Store) Clear(ctx context.Context, id string) error {
	_, err := s.db.Exec(ctx, `UPDATE http_sessions SET data = '{}'::jsonb WHERE id = $1`, id)
	return err
}

// IDs returns the ids of live rows, sorted.
func (s *Store) IDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id FROM http_sessions WHERE expires_at >= $1 ORDER BY id`,
		s.now(),
	)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// FlushExpired deletes expired rows.
func (s *Store) FlushExpired(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DELETE FROM http_sessions WHERE expires_at < $1`, s.now())
	return err
}
