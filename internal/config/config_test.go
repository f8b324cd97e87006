package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("OWNER_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "!", cfg.DefaultPrefix)
	assert.Equal(t, BackendDatastore, cfg.StorageBackend)
	assert.Equal(t, "datastore.json", cfg.StoragePath)
	assert.Equal(t, 60*time.Second, cfg.BlacklistCacheTTL)
	assert.Equal(t, 20, cfg.RateLimitPerMinute)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.IsOwner("42"))
	assert.False(t, cfg.IsOwner("43"))
}

func TestLoadRequiresToken(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DISCORD_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			DiscordToken:       "t",
			DefaultPrefix:      "!",
			StorageBackend:     "SQLite",
			DatabaseDSN:        "file::memory:",
			RateLimitPerMinute: 1,
			RateLimitBurst:     1,
		}
	}

	cfg := base()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, BackendSQLite, cfg.StorageBackend)

	cfg = base()
	cfg.DatabaseDSN = ""
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.StorageBackend = "mongo"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.RateLimitBurst = 0
	assert.Error(t, cfg.Validate())

	var nilCfg *Config
	assert.False(t, nilCfg.IsOwner("1"))
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
