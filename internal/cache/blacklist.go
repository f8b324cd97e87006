// Package cache puts a Valkey read-through cache in front of blacklist lookups.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

const keyPrefix = "bl:"

// Config: connection settings for the cache.
type Config struct {
	Addr string
	TTL  time.Duration
	// DisableCache turns off client side caching; needed for miniredis.
	DisableCache bool
}

// NewClient creates a Valkey client for cfg.Addr.
func NewClient(cfg Config) (valkey.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, errors.New("valkey addr is empty")
	}
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress:  []string{addr},
		DisableCache: cfg.DisableCache,
	})
	if err != nil {
		return nil, fmt.Errorf("create valkey client failed: %w", err)
	}
	return client, nil
}

// Ping checks the connection.
func Ping(ctx context.Context, client valkey.Client) error {
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("valkey ping failed: %w", err)
	}
	return nil
}

// Blacklist caches Contains answers per guild in a hash keyed by
// "user|channel". Writes go to the backend and drop the guild's hash.
// Cache failures fall through to the backend.
type Blacklist struct {
	next   st.Blacklist
	client valkey.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ st.Blacklist = (*Blacklist)(nil)

func NewBlacklist(next st.Blacklist, client valkey.Client, ttl time.Duration, logger *slog.Logger) *Blacklist {
	if logger == nil {
		logger = slog.Default()
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Blacklist{next: next, client: client, ttl: ttl, logger: logger}
}

func guildKey(guildID string) string { return keyPrefix + guildID }

func field(userID, channelID string) string { return userID + "|" + channelID }

func (b *Blacklist) Contains(ctx context.Context, guildID, userID, channelID string) (bool, error) {
	key := guildKey(guildID)
	f := field(userID, channelID)

	cached, err := b.client.Do(ctx, b.client.B().Hget().Key(key).Field(f).Build()).ToString()
	switch {
	case err == nil:
		return cached == "1", nil
	case !valkey.IsValkeyNil(err):
		b.logger.Warn("blacklist cache read failed", slog.String("key", key), slog.Any("error", err))
	}

	listed, err := b.next.Contains(ctx, guildID, userID, channelID)
	if err != nil {
		return false, err
	}

	value := "0"
	if listed {
		value = "1"
	}
	cmds := valkey.Commands{
		b.client.B().Hset().Key(key).FieldValue().FieldValue(f, value).Build(),
		b.client.B().Pexpire().Key(key).Milliseconds(max(b.ttl.Milliseconds(), 1)).Build(),
	}
	for _, resp := range b.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			b.logger.Warn("blacklist cache write failed", slog.String("key", key), slog.Any("error", err))
			break
		}
	}
	return listed, nil
}

func (b *Blacklist) AddBlacklist(ctx context.Context, entry st.BlacklistEntry) error {
	if err := b.next.AddBlacklist(ctx, entry); err != nil {
		return err
	}
	b.Invalidate(ctx, entry.GuildID)
	return nil
}

func (b *Blacklist) RemoveBlacklist(ctx context.Context, entry st.BlacklistEntry) error {
	if err := b.next.RemoveBlacklist(ctx, entry); err != nil {
		return err
	}
	b.Invalidate(ctx, entry.GuildID)
	return nil
}

func (b *Blacklist) ListBlacklist(ctx context.Context, guildID string) ([]st.BlacklistEntry, error) {
	return b.next.ListBlacklist(ctx, guildID)
}

// Invalidate drops every cached answer for the guild.
func (b *Blacklist) Invalidate(ctx context.Context, guildID string) {
	key := guildKey(guildID)
	if err := b.client.Do(ctx, b.client.B().Del().Key(key).Build()).Error(); err != nil {
		b.logger.Warn("blacklist cache invalidation failed", slog.String("key", key), slog.Any("error", err))
	}
}
