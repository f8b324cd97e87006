// /internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	BackendDatastore = "datastore"
	BackendSQLite    = "sqlite"
	BackendPostgres  = "postgres"
)

type LogConfig struct {
	Dir        string `env:"DIR"`
	MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"50"`
	MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"MAX_AGE_DAYS" envDefault:"14"`
	Compress   bool   `env:"COMPRESS" envDefault:"true"`
	Level      string `env:"LEVEL" envDefault:"info"`
}

type Config struct {
	DiscordToken  string `env:"DISCORD_TOKEN,required,notEmpty"`
	OwnerID       string `env:"OWNER_ID"`
	DefaultPrefix string `env:"DEFAULT_PREFIX" envDefault:"!"`

	StorageBackend string `env:"STORAGE_BACKEND" envDefault:"datastore"`
	StoragePath    string `env:"STORAGE_PATH" envDefault:"datastore.json"`
	DatabaseDSN    string `env:"DATABASE_DSN"`

	ValkeyAddr        string        `env:"VALKEY_ADDR"`
	BlacklistCacheTTL time.Duration `env:"BLACKLIST_CACHE_TTL" envDefault:"60s"`

	RateLimitPerMinute int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"20"`
	RateLimitBurst     int `env:"RATE_LIMIT_BURST" envDefault:"5"`

	// StartupAttempts bounds retries while connecting to storage and valkey.
	StartupAttempts int `env:"STARTUP_ATTEMPTS" envDefault:"5"`

	Log LogConfig `envPrefix:"LOG_"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, falling back to system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags can't express.
func (c *Config) Validate() error {
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch c.StorageBackend {
	case BackendDatastore:
		if c.StoragePath == "" {
			return errors.New("STORAGE_PATH is empty")
		}
	case BackendSQLite, BackendPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the %s backend", c.StorageBackend)
		}
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	if strings.TrimSpace(c.DefaultPrefix) == "" {
		return errors.New("DEFAULT_PREFIX is empty")
	}
	if c.RateLimitPerMinute <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("invalid rate limit: per_minute=%d burst=%d", c.RateLimitPerMinute, c.RateLimitBurst)
	}
	return nil
}

// IsOwner reports whether userID is the configured bot owner.
func (c *Config) IsOwner(userID string) bool {
	return c != nil && c.OwnerID != "" && userID == c.OwnerID
}
