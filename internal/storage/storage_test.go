package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/internal/storage/sqlstore"
	"github.com/keshon/lotr-bot/internal/storage/storagetest"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(context.Background(), filepath.Join(t.TempDir(), "datastore.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStorageBackend(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) st.Backend { return newTestStorage(t) })
}

func TestStoragePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datastore.json")
	ctx := context.Background()

	s, err := New(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.PutCommand(ctx, "g1", "lore", `{"content":"\\$0 is $0"}`, "Lore", false))
	require.NoError(t, s.AddBlacklist(ctx, st.BlacklistEntry{GuildID: "g1", Subject: "u1", Scope: st.ScopeUser}))
	require.NoError(t, s.Close())

	s, err = New(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	got, err := s.GetCommand(ctx, "g1", "lore")
	require.NoError(t, err)
	assert.Equal(t, `{"content":"\\$0 is $0"}`, got.Body)
	assert.Equal(t, "Lore", got.Description)

	listed, err := s.Contains(ctx, "g1", "u1", "")
	require.NoError(t, err)
	assert.True(t, listed)
}

func TestStorageReadsDoNotCreateRecords(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.GetCommand(ctx, "g1", "missing")
	assert.Error(t, err)
	list, err := s.ListCommands(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, 0, s.ds.Len())
}

func TestStorageDefineListRemove(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.PutCommand(ctx, "g1", "lore", `{"content":"$0"}`, "Lore", false))
	require.NoError(t, s.PutCommand(ctx, "g1", "lore", `{"content":"$0!"}`, "Lore", true))

	list, err := s.ListCommands(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lore", list[0].Name)

	require.NoError(t, s.RemoveCommand(ctx, "g1", "lore"))
	list, err = s.ListCommands(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestStorageConcurrentWrites(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.PutCommand(ctx, "g1", fmt.Sprintf("cmd%02d", i), `{"content":"x"}`, "", false))
		}(i)
	}
	wg.Wait()

	list, err := s.ListCommands(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, list, 20)
}

func TestOpenSelectsBackend(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, &config.Config{StorageBackend: config.BackendDatastore, StoragePath: filepath.Join(t.TempDir(), "ds.json")})
	require.NoError(t, err)
	assert.IsType(t, &Storage{}, b)
	require.NoError(t, b.Close())

	b, err = Open(ctx, &config.Config{StorageBackend: config.BackendSQLite, DatabaseDSN: ":memory:"})
	require.NoError(t, err)
	assert.IsType(t, &sqlstore.Store{}, b)
	require.NoError(t, b.Close())

	_, err = Open(ctx, &config.Config{StorageBackend: "mongo"})
	assert.Error(t, err)
}
