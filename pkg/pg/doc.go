// Package pg connects to PostgreSQL through pgx/v5 and provides a
// session.Store backed by a single table.
//
// # Architecture
//
//   - Config is populated from PG_* environment variables and controls the
//     pool limits and connection retries.
//   - Connect opens a *pgxpool.Pool, retrying with a growing delay until the
//     database answers.
//   - Migrate applies the embedded goose migrations that create the
//     http_sessions table (id, data jsonb, expires_at).
//   - Store implements session.Store, session.Lister and session.Flusher.
//
// # Usage
//
//	var cfg pg.Config
//	config.MustLoad(&cfg)
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
//	    return err
//	}
//
//	store := pg.NewStore(pool, 30*time.Minute)
//	go session.NewSweeper(store, 5*time.Minute).Run(ctx)
//
// Rows are never removed by reads. Run a session.Sweeper, or the sessiond
// flush command from cron, to delete expired rows.
//
// # Error Handling
//
// Store methods return pgx errors unchanged, except that a missing or
// expired row becomes session.ErrNotFound.
package pg
