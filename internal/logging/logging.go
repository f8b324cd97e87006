// Package logging builds the bot's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/keshon/lotr-bot/internal/config"
)

// ParseLevel maps a config level name to a slog level. Unknown names mean info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a colored stdout logger, or a stdout+file logger when cfg.Dir is
// set. The returned closer flushes the rotating file and is never nil.
func New(cfg config.LogConfig, fileName string) (*slog.Logger, io.Closer, error) {
	opts := &tint.Options{
		Level:      ParseLevel(cfg.Level),
		TimeFormat: time.RFC3339,
		AddSource:  true,
	}

	logDir := strings.TrimSpace(cfg.Dir)
	if logDir == "" {
		return slog.New(tint.NewHandler(os.Stdout, opts)), nopCloser{}, nil
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir failed: %w", err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, fileName),
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	opts.NoColor = true
	logger := slog.New(tint.NewHandler(io.MultiWriter(os.Stdout, file), opts))
	logger.Info("file logging enabled", slog.String("path", file.Filename))
	return logger, file, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
