package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valkey-io/valkey-go"

	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

type countingBlacklist struct {
	listed  map[string]bool
	err     error
	lookups int
}

func (c *countingBlacklist) Contains(_ context.Context, _, userID, _ string) (bool, error) {
	c.lookups++
	return c.listed[userID], c.err
}

func (c *countingBlacklist) AddBlacklist(_ context.Context, e st.BlacklistEntry) error {
	c.listed[e.Subject] = true
	return nil
}

func (c *countingBlacklist) RemoveBlacklist(_ context.Context, e st.BlacklistEntry) error {
	delete(c.listed, e.Subject)
	return nil
}

func (c *countingBlacklist) ListBlacklist(context.Context, string) ([]st.BlacklistEntry, error) {
	return nil, nil
}

func newTestCache(t *testing.T, next st.Blacklist) (*Blacklist, *miniredis.Miniredis) {
	t.Helper()
	return newTestCacheTTL(t, next, 30*time.Second)
}

func newTestCacheTTL(t *testing.T, next st.Blacklist, ttl time.Duration) (*Blacklist, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:       []string{mr.Addr()},
		DisableCache:      true,
		ForceSingleClient: true,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBlacklist(next, client, ttl, logger), mr
}

func TestContainsReadsThrough(t *testing.T) {
	next := &countingBlacklist{listed: map[string]bool{"bad": true}}
	c, mr := newTestCache(t, next)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		listed, err := c.Contains(ctx, "g1", "bad", "c1")
		require.NoError(t, err)
		assert.True(t, listed)

		listed, err = c.Contains(ctx, "g1", "good", "c1")
		require.NoError(t, err)
		assert.False(t, listed)
	}
	assert.Equal(t, 2, next.lookups)
	assert.Equal(t, "1", mr.HGet("bl:g1", "bad|c1"))
	assert.Equal(t, 30*time.Second, mr.TTL("bl:g1"))

	mr.FastForward(31 * time.Second)
	_, err := c.Contains(ctx, "g1", "bad", "c1")
	require.NoError(t, err)
	assert.Equal(t, 3, next.lookups)
}

func TestSubSecondTTLStillCaches(t *testing.T) {
	next := &countingBlacklist{listed: map[string]bool{"bad": true}}
	c, mr := newTestCacheTTL(t, next, 500*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		listed, err := c.Contains(ctx, "g1", "bad", "c1")
		require.NoError(t, err)
		assert.True(t, listed)
	}
	assert.Equal(t, 1, next.lookups)
	assert.Equal(t, 500*time.Millisecond, mr.TTL("bl:g1"))

	mr.FastForward(time.Second)
	_, err := c.Contains(ctx, "g1", "bad", "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, next.lookups)
}

func TestWritesInvalidateGuild(t *testing.T) {
	next := &countingBlacklist{listed: map[string]bool{}}
	c, mr := newTestCache(t, next)
	ctx := context.Background()

	listed, err := c.Contains(ctx, "g1", "u1", "")
	require.NoError(t, err)
	assert.False(t, listed)
	require.True(t, mr.Exists("bl:g1"))

	require.NoError(t, c.AddBlacklist(ctx, st.BlacklistEntry{GuildID: "g1", Subject: "u1", Scope: st.ScopeUser}))
	assert.False(t, mr.Exists("bl:g1"))

	listed, err = c.Contains(ctx, "g1", "u1", "")
	require.NoError(t, err)
	assert.True(t, listed)

	require.NoError(t, c.RemoveBlacklist(ctx, st.BlacklistEntry{GuildID: "g1", Subject: "u1", Scope: st.ScopeUser}))
	listed, err = c.Contains(ctx, "g1", "u1", "")
	require.NoError(t, err)
	assert.False(t, listed)
}

func TestBackendErrorsAreNotCached(t *testing.T) {
	next := &countingBlacklist{listed: map[string]bool{}, err: errors.New("db down")}
	c, mr := newTestCache(t, next)

	_, err := c.Contains(context.Background(), "g1", "u1", "c1")
	assert.Error(t, err)
	assert.False(t, mr.Exists("bl:g1"))
}

func TestCacheOutageFallsThrough(t *testing.T) {
	next := &countingBlacklist{listed: map[string]bool{"bad": true}}
	c, mr := newTestCache(t, next)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	listed, err := c.Contains(ctx, "g1", "bad", "c1")
	require.NoError(t, err)
	assert.True(t, listed)
	assert.Equal(t, 1, next.lookups)
}
