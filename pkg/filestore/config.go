package filestore

// Config describes where session files live.
type Config struct {
	Dir string `env:"SESSION_FILE_DIR" envDefault:"./sessions"`
}
