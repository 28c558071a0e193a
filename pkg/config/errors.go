package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct
	ErrParsingConfig = errors.New("config.parsing_failed")

	// ErrEnvFile is returned when an explicitly requested .env file cannot be read
	ErrEnvFile = errors.New("config.env_file")

	// ErrNilPointer is returned when a nil pointer is provided to Load
	ErrNilPointer = errors.New("config.nil_pointer")
)
