package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/internal/logging"
	"github.com/keshon/lotr-bot/internal/storage"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
	v "github.com/keshon/lotr-bot/internal/version"
)

var (
	// Global flags
	backend  string
	path     string
	dsn      string
	logLevel string

	logger *slog.Logger
)

// RootCmd is the offline administration tool for guild data.
var RootCmd = &cobra.Command{
	Use:     "lotr-cli",
	Short:   v.AppName + " administration",
	Long:    `Manage custom commands and guild settings without running the bot.`,
	Version: v.BuildVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: logging.ParseLevel(logLevel),
		}))
		return nil
	},
	SilenceUsage: true,
}

func init() {
	_ = godotenv.Load()

	RootCmd.PersistentFlags().StringVar(&backend, "backend", envOr("STORAGE_BACKEND", config.BackendDatastore), "storage backend (datastore, sqlite or postgres)")
	RootCmd.PersistentFlags().StringVar(&path, "path", envOr("STORAGE_PATH", "datastore.json"), "datastore file")
	RootCmd.PersistentFlags().StringVar(&dsn, "dsn", os.Getenv("DATABASE_DSN"), "database DSN for sql backends")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level")

	addCommands()
}

func addCommands() {
	RootCmd.AddCommand(
		newListCommand(),
		newShowCommand(),
		newDefineCommand(),
		newRemoveCommand(),
		newExpandCommand(),
		newCopyCommand(),
		newReadmeCommand(),
	)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// openStore opens the backend named by the global flags.
func openStore(ctx context.Context) (st.Backend, error) {
	return openBackend(ctx, backend, path, dsn)
}

func openBackend(ctx context.Context, backend, path, dsn string) (st.Backend, error) {
	cfg := &config.Config{StorageBackend: backend, StoragePath: path, DatabaseDSN: dsn}
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", backend, err)
	}
	return store, nil
}
