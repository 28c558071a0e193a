// Package redis connects to Redis and provides a session.Store backed by it.
//
// Connect parses a redis:// URL and retries the initial ping according to
// Config. Store keeps one key per session, "session:<id>" by default, holding
// the JSON-encoded record. Redis expires keys on its own, so there is nothing
// to sweep.
//
// # Usage
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	store := redis.NewStoreFromConfig(client, cfg, 30*time.Minute)
//	manager := session.New(store, sig)
//
// Healthcheck returns a probe suitable for httpserver.HealthCheckHandler.
//
// # Errors
//
// Connection failures are reported as ErrRedisNotReady joined with the
// driver error. Store methods return go-redis errors unchanged, except that
// missing keys become session.ErrNotFound.
package redis
