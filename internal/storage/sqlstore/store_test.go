package sqlstore

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/keshon/lotr-bot/internal/storage/storagetest"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	s := New(db)
	require.NoError(t, s.AutoMigrate(context.Background()))
	return s
}

func TestStoreBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) st.Backend { return newTestStore(t) })
}

func TestOpenSQLite(t *testing.T) {
	s, err := Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.PutCommand(context.Background(), "g1", "a", `{}`, "", false))
	list, err := s.ListCommands(context.Background(), "g1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)
}
