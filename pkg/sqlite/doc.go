// Package sqlite provides a session.Store backed by an embedded SQLite
// database through the CGO-free modernc.org/sqlite driver.
//
// Open creates the database file if needed, switches it to WAL mode and
// applies the embedded goose migrations. Expired rows are hidden from reads
// and removed by FlushExpired, so pair the store with a session.Sweeper.
//
//	db, err := sqlite.Open(ctx, sqlite.Config{Path: "sessions.db", BusyTimeout: 5 * time.Second})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	store := sqlite.NewStore(db, 30*time.Minute)
package sqlite
