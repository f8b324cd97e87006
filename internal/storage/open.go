package storage

import (
	"context"
	"fmt"

	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/internal/storage/sqlstore"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

// Open returns the backend selected by cfg.StorageBackend.
func Open(ctx context.Context, cfg *config.Config) (st.Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendDatastore, "":
		s, err := New(ctx, cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.BackendSQLite, config.BackendPostgres:
		s, err := sqlstore.Open(ctx, cfg.StorageBackend, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
