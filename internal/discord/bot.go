package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/internal/customcmd"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

const commandTimeout = 30 * time.Second

// Prefixes reports a guild's custom prefix.
type Prefixes interface {
	Prefix(ctx context.Context, guildID string) (prefix string, ok bool, err error)
}

// Bot is a Discord bot dispatching prefix commands.
type Bot struct {
	cfg      *config.Config
	dg       *discordgo.Session
	prefixes Prefixes
	logger   *slog.Logger

	mu       sync.RWMutex
	ctx      context.Context
	registry *cmd.Registry
	fallback cmd.Command
}

// NewBot creates the session without connecting.
func NewBot(cfg *config.Config, prefixes Prefixes, logger *slog.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentsMessageContent

	return &Bot{
		cfg:      cfg,
		dg:       dg,
		prefixes: prefixes,
		logger:   logger,
		ctx:      context.Background(),
		registry: cmd.NewRegistry(),
	}, nil
}

// Session exposes the underlying session for responders and renderers.
func (b *Bot) Session() *discordgo.Session {
	return b.dg
}

// Handle sets the command registry and the command run for unknown names.
func (b *Bot) Handle(registry *cmd.Registry, fallback cmd.Command) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.registry = registry
	b.fallback = fallback
}

// Run connects and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()

	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onMessageCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()

	<-ctx.Done()
	b.logger.Info("shutdown signal received, cleaning up")
	return nil
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.logger.Info("discord bot is running",
		slog.String("user", r.User.Username), slog.Int("guilds", len(r.Guilds)))
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	b.mu.RLock()
	base, registry, fallback := b.ctx, b.registry, b.fallback
	b.mu.RUnlock()

	ctx, cancel := context.WithTimeout(base, commandTimeout)
	defer cancel()

	selfID := ""
	if s.State != nil && s.State.User != nil {
		selfID = s.State.User.ID
	}
	name, raw, ok := ParseCommand(m.Content, b.prefixesFor(ctx, m.GuildID, selfID)...)
	if !ok {
		return
	}

	inv := &cmd.Invocation{
		Name:      strings.ToLower(name),
		Args:      customcmd.SplitArgs(raw),
		Raw:       raw,
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		ParentID:  b.threadParent(ctx, m.ChannelID),
		MessageID: m.ID,
		UserID:    m.Author.ID,
		Username:  m.Author.Username,
		Content:   m.Content,
		Data:      m.Message,
	}

	c := registry.Get(inv.Name)
	if c == nil {
		c = fallback
	}
	if c == nil {
		return
	}
	if err := c.Run(ctx, inv); err != nil {
		b.logger.Debug("command returned error", slog.String("command", inv.Name), slog.Any("error", err))
	}
}

// prefixesFor returns the guild prefix, or the configured default, plus the
// bot mention forms.
func (b *Bot) prefixesFor(ctx context.Context, guildID, selfID string) []string {
	prefix := b.cfg.DefaultPrefix
	if guildID != "" && b.prefixes != nil {
		p, ok, err := b.prefixes.Prefix(ctx, guildID)
		if err != nil {
			b.logger.Warn("prefix lookup failed", slog.String("guild_id", guildID), slog.Any("error", err))
		} else if ok && p != "" {
			prefix = p
		}
	}
	out := []string{prefix}
	if selfID != "" {
		out = append(out, "<@"+selfID+">", "<@!"+selfID+">")
	}
	return out
}

func (b *Bot) threadParent(ctx context.Context, channelID string) string {
	ch, err := b.dg.State.Channel(channelID)
	if err != nil {
		if ch, err = b.dg.Channel(channelID, discordgo.WithContext(ctx)); err != nil {
			return ""
		}
	}
	if ch.IsThread() {
		return ch.ParentID
	}
	return ""
}

// ParseCommand splits content into a command name and the untouched remainder
// when it starts with one of prefixes.
func ParseCommand(content string, prefixes ...string) (name, raw string, ok bool) {
	for _, p := range prefixes {
		if p == "" || !strings.HasPrefix(content, p) {
			continue
		}
		rest := strings.TrimLeftFunc(content[len(p):], unicode.IsSpace)
		if rest == "" {
			return "", "", false
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return rest, "", true
		}
		return rest[:end], strings.TrimLeftFunc(rest[end:], unicode.IsSpace), true
	}
	return "", "", false
}
