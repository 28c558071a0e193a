package signer

import "strings"

// Config holds signer configuration loaded from the environment.
type Config struct {
	// Secrets is a comma separated list. The first one signs, all of them verify.
	Secrets string `env:"SIGNER_SECRETS,required"`
	Salt    string `env:"SIGNER_SALT" envDefault:"itsdangerous.Signer"`
	Digest  string `env:"SIGNER_DIGEST" envDefault:"sha1"`
}

func (c Config) parseSecrets() []string {
	if c.Secrets == "" {
		return nil
	}
	parts := strings.Split(c.Secrets, ",")
	secrets := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			secrets = append(secrets, p)
		}
	}
	return secrets
}

// NewFromConfig creates a Signer from the provided Config.
func NewFromConfig(cfg Config, opts ...Option) (*Signer, error) {
	digest, err := DigestByName(cfg.Digest)
	if err != nil {
		return nil, err
	}
	configOpts := []Option{WithDigest(digest), WithSalt(cfg.Salt)}
	return New(cfg.parseSecrets(), append(configOpts, opts...)...)
}
