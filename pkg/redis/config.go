package redis

import "time"

// Config describes the Redis connection and the session key layout.
type Config struct {
	// ConnectionURL in the form "redis://:password@localhost:6379/0".
	ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`

	// KeyPrefix namespaces session keys so the database can be shared.
	KeyPrefix string `env:"REDIS_SESSION_PREFIX" envDefault:"session:"`

	// ScanBatchSize is the COUNT hint used when listing sessions.
	ScanBatchSize int `env:"REDIS_SCAN_BATCH_SIZE" envDefault:"1000"`
}
