package discord

import (
	"context"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lotr-bot/internal/storagetypes"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

// Names resolves guild and channel names from state, then REST.
type Names struct {
	s *discordgo.Session
}

func NewNames(s *discordgo.Session) *Names {
	return &Names{s: s}
}

func (n *Names) GuildName(guildID string) string {
	if guildID == "" {
		return ""
	}
	guild, err := n.s.State.Guild(guildID)
	if err != nil {
		if guild, err = n.s.Guild(guildID); err != nil {
			return ""
		}
	}
	return guild.Name
}

func (n *Names) ChannelName(channelID string) string {
	if channelID == "" {
		return ""
	}
	channel, err := n.s.State.Channel(channelID)
	if err != nil {
		if channel, err = n.s.Channel(channelID); err != nil {
			return ""
		}
	}
	return channel.Name
}

// NameResolver is the subset of Names used by the history middleware.
type NameResolver interface {
	GuildName(guildID string) string
	ChannelName(channelID string) string
}

// WithCommandHistory records every guild invocation of the wrapped command
// after it ran, whatever its outcome.
func WithCommandHistory(history storagetypes.History, names NameResolver, logger *slog.Logger) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)
			if !inv.InGuild() {
				return err
			}

			entry := storagetypes.CommandHistory{
				ChannelID:   inv.ChannelID,
				ChannelName: names.ChannelName(inv.ChannelID),
				GuildName:   names.GuildName(inv.GuildID),
				UserID:      inv.UserID,
				Username:    inv.Username,
				Command:     c.Name(),
				Datetime:    time.Now().UTC(),
			}
			if e := history.AppendCommandHistory(ctx, inv.GuildID, entry); e != nil {
				logger.Warn("failed to log command",
					slog.String("command", c.Name()), slog.String("guild_id", inv.GuildID), slog.Any("error", e))
			}
			return err
		})
	}
}
