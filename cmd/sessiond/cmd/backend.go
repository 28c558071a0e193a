package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/httpsession/pkg/config"
	"github.com/dmitrymomot/httpsession/pkg/filestore"
	"github.com/dmitrymomot/httpsession/pkg/httpserver"
	"github.com/dmitrymomot/httpsession/pkg/logger"
	"github.com/dmitrymomot/httpsession/pkg/mongo"
	"github.com/dmitrymomot/httpsession/pkg/pg"
	"github.com/dmitrymomot/httpsession/pkg/redis"
	"github.com/dmitrymomot/httpsession/pkg/session"
	"github.com/dmitrymomot/httpsession/pkg/sqlite"
)

// ErrUnknownStore is returned for an unsupported SESSION_STORE value.
var ErrUnknownStore = errors.New("sessiond.unknown_store")

// backend is an opened session store together with its readiness checks and
// the function releasing its connections.
type backend struct {
	name   string
	store  session.Store
	checks []httpserver.Check
	close  func()
}

func openBackend(ctx context.Context, name string, ttl time.Duration, log *slog.Logger) (*backend, error) {
	b := &backend{name: name, close: func() {}}
	log = log.With(logger.Store(name))

	switch name {
	case "memory":
		store := session.NewMemoryStore(ttl)
		b.store = store
		b.close = func() { _ = store.Close() }

	case "file":
		var cfg filestore.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		store, err := filestore.NewFromConfig(cfg, ttl)
		if err != nil {
			return nil, err
		}
		b.store = store

	case "redis":
		var cfg redis.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.store = redis.NewStoreFromConfig(client, cfg, ttl)
		b.checks = append(b.checks, redis.Healthcheck(client))
		b.close = func() { _ = client.Close() }

	case "postgres":
		var cfg pg.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg, log); err != nil {
			pool.Close()
			return nil, err
		}
		b.store = pg.NewStore(pool, ttl)
		b.checks = append(b.checks, pg.Healthcheck(pool))
		b.close = pool.Close

	case "mongo":
		var cfg mongo.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := mongo.NewStore(db.Collection(cfg.Collection), ttl)
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = db.Client().Disconnect(context.Background())
			return nil, err
		}
		b.store = store
		b.checks = append(b.checks, mongo.Healthcheck(db.Client()))
		b.close = func() { _ = db.Client().Disconnect(context.Background()) }

	case "sqlite":
		var cfg sqlite.Config
		if err := config.Load(&cfg); err != nil {
			return nil, err
		}
		db, err := sqlite.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		b.store = sqlite.NewStore(db, ttl)
		b.checks = append(b.checks, sqlite.Healthcheck(db))
		b.close = func() { _ = db.Close() }

	default:
		return nil, errors.Join(ErrUnknownStore, fmt.Errorf("%q", name))
	}

	log.DebugContext(ctx, "session store opened", slog.Duration("ttl", b.store.TTL()))
	return b, nil
}

// openConfiguredBackend opens the store named by SESSION_STORE.
func openConfiguredBackend(ctx context.Context) (*backend, session.Config, error) {
	var cfg session.Config
	if err := config.Load(&cfg); err != nil {
		return nil, cfg, err
	}
	b, err := openBackend(ctx, cfg.Store, cfg.TTL, appLogger)
	return b, cfg, err
}
