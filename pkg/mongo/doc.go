// Package mongo connects to MongoDB and provides a session.Store backed by a
// collection.
//
// New retries the initial connection according to Config, which is read from
// MONGODB_* environment variables. Store keeps one document per session:
//
//	{ _id: <session id>, data: <encoded record>, expires_at: <date> }
//
// EnsureIndexes adds a TTL index on expires_at so the server removes expired
// documents itself. Reads never return expired documents, even before the
// server got around to deleting them.
//
// # Usage
//
//	db, err := mongo.NewWithDatabase(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	store := mongo.NewStore(db.Collection(cfg.Collection), 30*time.Minute)
//	if err := store.EnsureIndexes(ctx); err != nil {
//	    return err
//	}
//
// # Error Handling
//
// Connection failures are reported as ErrFailedToConnectToMongo joined with
// the driver error. Store methods return driver errors unchanged, except that
// missing documents become session.ErrNotFound.
package mongo
