package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lotr-bot/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("bogus"))
}

func TestNewWritesToFile(t *testing.T) {
	dir := t.TempDir()
	logger, closer, err := New(config.LogConfig{Dir: dir, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1}, "bot.log")
	require.NoError(t, err)

	logger.Warn("custom command render failed", slog.String("name", "lore"))
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "bot.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "custom command render failed")
	assert.Contains(t, string(data), "name=lore")
}

func TestNewRejectsBadRotation(t *testing.T) {
	_, _, err := New(config.LogConfig{Dir: t.TempDir()}, "bot.log")
	assert.Error(t, err)
}

func TestNewStdout(t *testing.T) {
	logger, closer, err := New(config.LogConfig{}, "bot.log")
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closer.Close())
}
