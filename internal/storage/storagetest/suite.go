// Package storagetest holds the behavior every storage backend must share.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lotr-bot/internal/customcmd"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

// Run exercises a fresh backend from newBackend in each subtest.
func Run(t *testing.T, newBackend func(t *testing.T) st.Backend) {
	t.Helper()

	t.Run("CustomCommands", func(t *testing.T) { testCustomCommands(t, newBackend(t)) })
	t.Run("Blacklist", func(t *testing.T) { testBlacklist(t, newBackend(t)) })
	t.Run("GuildSettings", func(t *testing.T) { testGuildSettings(t, newBackend(t)) })
	t.Run("History", func(t *testing.T) { testHistory(t, newBackend(t)) })
}

func testCustomCommands(t *testing.T, b st.Backend) {
	ctx := context.Background()

	_, err := b.GetCommand(ctx, "g1", "lore")
	require.ErrorIs(t, err, customcmd.ErrNotFound)

	require.NoError(t, b.PutCommand(ctx, "g1", "lore", `{"content":"$0"}`, "", false))
	require.NoError(t, b.PutCommand(ctx, "g1", "greet", `{"content":"hi"}`, "Says hi", false))
	require.NoError(t, b.PutCommand(ctx, "g2", "lore", `{"content":"other"}`, "", false))

	got, err := b.GetCommand(ctx, "g1", "lore")
	require.NoError(t, err)
	assert.Equal(t, `{"content":"$0"}`, got.Body)
	assert.Equal(t, "g1", got.GuildID)

	require.NoError(t, b.PutCommand(ctx, "g1", "lore", `{"content":"v2"}`, "Second", true))
	got, err = b.GetCommand(ctx, "g1", "lore")
	require.NoError(t, err)
	assert.Equal(t, `{"content":"v2"}`, got.Body)
	assert.Equal(t, "Second", got.Description)

	list, err := b.ListCommands(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []customcmd.Summary{
		{Name: "greet", Description: "Says hi"},
		{Name: "lore", Description: "Second"},
	}, list)

	require.NoError(t, b.RemoveCommand(ctx, "g1", "lore"))
	_, err = b.GetCommand(ctx, "g1", "lore")
	assert.ErrorIs(t, err, customcmd.ErrNotFound)
	_, err = b.GetCommand(ctx, "g2", "lore")
	assert.NoError(t, err)
}

func testBlacklist(t *testing.T, b st.Backend) {
	ctx := context.Background()

	listed, err := b.Contains(ctx, "g1", "u1", "c1")
	require.NoError(t, err)
	assert.False(t, listed)

	user := st.BlacklistEntry{GuildID: "g1", Subject: "u1", Scope: st.ScopeUser}
	channel := st.BlacklistEntry{GuildID: "g1", Subject: "c9", Scope: st.ScopeChannel}
	require.NoError(t, b.AddBlacklist(ctx, user))
	require.NoError(t, b.AddBlacklist(ctx, user))
	require.NoError(t, b.AddBlacklist(ctx, channel))
	assert.ErrorIs(t, b.AddBlacklist(ctx, st.BlacklistEntry{GuildID: "g1", Subject: "x", Scope: "role"}), st.ErrInvalidScope)

	cases := []struct {
		user, channel string
		want          bool
	}{
		{"u1", "c1", true},
		{"u1", "", true},
		{"u2", "c9", true},
		{"u2", "", false},
		{"u2", "c1", false},
	}
	for _, tc := range cases {
		listed, err := b.Contains(ctx, "g1", tc.user, tc.channel)
		require.NoError(t, err)
		assert.Equal(t, tc.want, listed, fmt.Sprintf("user=%s channel=%s", tc.user, tc.channel))
	}
	listed, err = b.Contains(ctx, "g2", "u1", "c9")
	require.NoError(t, err)
	assert.False(t, listed)

	entries, err := b.ListBlacklist(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []st.BlacklistEntry{user, channel}, entries)

	require.NoError(t, b.RemoveBlacklist(ctx, user))
	listed, err = b.Contains(ctx, "g1", "u1", "")
	require.NoError(t, err)
	assert.False(t, listed)
}

func testGuildSettings(t *testing.T, b st.Backend) {
	ctx := context.Background()

	_, ok, err := b.Prefix(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.SetPrefix(ctx, "g1", "?"))
	require.NoError(t, b.SetServerIP(ctx, "g1", "mc.example.org"))
	require.NoError(t, b.SetPrefix(ctx, "g1", ";"))

	prefix, ok, err := b.Prefix(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, ";", prefix)

	ip, ok, err := b.ServerIP(ctx, "g1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "mc.example.org", ip)

	require.NoError(t, b.RemoveServerIP(ctx, "g1"))
	_, ok, err = b.ServerIP(ctx, "g1")
	require.NoError(t, err)
	assert.False(t, ok)
	prefix, _, err = b.Prefix(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, ";", prefix)

	require.NoError(t, b.AddAdmin(ctx, "g1", "u2"))
	require.NoError(t, b.AddAdmin(ctx, "g1", "u1"))
	require.NoError(t, b.AddAdmin(ctx, "g1", "u1"))
	admin, err := b.IsBotAdmin(ctx, "g1", "u1")
	require.NoError(t, err)
	assert.True(t, admin)
	admin, err = b.IsBotAdmin(ctx, "g2", "u1")
	require.NoError(t, err)
	assert.False(t, admin)

	admins, err := b.ListAdmins(ctx, "g1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, admins)

	require.NoError(t, b.RemoveAdmin(ctx, "g1", "u1"))
	admins, err = b.ListAdmins(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, admins)
}

func testHistory(t *testing.T, b st.Backend) {
	ctx := context.Background()
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < st.CommandHistoryLimit+5; i++ {
		require.NoError(t, b.AppendCommandHistory(ctx, "g1", st.CommandHistory{
			ChannelID: "c1",
			UserID:    "u1",
			Username:  "frodo",
			Command:   fmt.Sprintf("cmd%d", i),
			Datetime:  start.Add(time.Duration(i) * time.Minute),
		}))
	}

	history, err := b.CommandHistory(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, history, st.CommandHistoryLimit)
	assert.Equal(t, "cmd5", history[0].Command)
	assert.Equal(t, fmt.Sprintf("cmd%d", st.CommandHistoryLimit+4), history[len(history)-1].Command)
	assert.Equal(t, "frodo", history[0].Username)

	empty, err := b.CommandHistory(ctx, "g2")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
