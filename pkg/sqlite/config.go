package sqlite

import "time"

// Config describes the database file.
type Config struct {
	// Path of the database file. ":memory:" keeps everything in process.
	Path        string        `env:"SQLITE_PATH" envDefault:"sessions.db"`
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" envDefault:"5s"`

	// MigrationsTable stores the applied schema version.
	MigrationsTable string `env:"SQLITE_MIGRATIONS_TABLE" envDefault:"http_sessions_migrations"`
}
