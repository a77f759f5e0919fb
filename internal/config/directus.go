package config

import (
	"fmt"
	"os"
	"time"
)

const (
	StoreDriverGorm     = "gorm"
	StoreDriverDirectus = "directus"
)

// DirectusConfig configures the remote CMS item store.
type DirectusConfig struct {
	URL      string        `mapstructure:"url"`
	Token    string        `mapstructure:"token"`     // static access token (can be set directly or via env var)
	TokenEnv string        `mapstructure:"token_env"` // environment variable name for the token
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ResolveEnvVars loads the token from TokenEnv unless it is already set.
func (c *DirectusConfig) ResolveEnvVars() {
	if c.TokenEnv != "" && c.Token == "" {
		if val := os.Getenv(c.TokenEnv); val != "" {
			c.Token = val
		}
	}
}

// Validate checks that the Directus configuration is usable.
func (c *DirectusConfig) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("directus: url is required")
	}
	if c.Token == "" {
		return fmt.Errorf("directus: token is required (set directly or via %s)", c.TokenEnv)
	}
	return nil
}
