package sqlite

import "errors"

var (
	ErrEmptyPath               = errors.New("sqlite.empty_path")
	ErrFailedToOpen            = errors.New("sqlite.open_failed")
	ErrFailedToApplyMigrations = errors.New("sqlite.migrations_failed")
	ErrHealthcheckFailed       = errors.New("sqlite.healthcheck_failed")
)
