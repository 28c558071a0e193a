// Package config loads application settings from environment variables.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11: every
// package of this module describes its settings as a Config struct with
// `env` / `envDefault` tags, and Load fills such a struct from the process
// environment plus an optional .env file.
//
//	var cfg session.Config
//	if err := config.Load(&cfg); err != nil {
//		return err
//	}
//	manager, err := session.NewFromConfig(cfg, store, sig)
//
// LoadEnv reads explicitly named files, for example from a --env-file flag,
// with precedence over the existing environment.
package config
