package check

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keshon/lotr-bot/internal/authz"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

// MsgNotAllowedHere is sent privately to blacklisted invokers.
const MsgNotAllowedHere = "You are not allowed to use this command here."

// Authority answers privilege and blacklist questions. *authz.Gate is one.
type Authority interface {
	Privileged(ctx context.Context, guildID, userID string) bool
	// Blacklisted must report true when the lookup fails.
	Blacklisted(ctx context.Context, guildID, userID, channelID string) bool
}

// MessageDeleter removes the invoking message of a blacklisted user.
type MessageDeleter interface {
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// ServerIPs looks up a guild's registered game server address.
type ServerIPs interface {
	ServerIP(ctx context.Context, guildID string) (string, bool, error)
}

// AllowedBlacklist rejects blacklisted users and channels. Threads are judged
// by their parent channel. DMs and privileged users always pass.
func AllowedBlacklist(auth Authority, del MessageDeleter, logger *slog.Logger) Check {
	return Check{
		Name: "allowed_blacklist",
		Fn: func(ctx context.Context, inv *cmd.Invocation) error {
			return blacklistCheck(ctx, auth, del, logger, inv, inv.EffectiveChannel(), "blacklist")
		},
	}
}

// UserBlacklist rejects blacklisted users regardless of channel.
func UserBlacklist(auth Authority, del MessageDeleter, logger *slog.Logger) Check {
	return Check{
		Name: "user_blacklist",
		Fn: func(ctx context.Context, inv *cmd.Invocation) error {
			return blacklistCheck(ctx, auth, del, logger, inv, "", "user blacklist")
		},
	}
}

func blacklistCheck(ctx context.Context, auth Authority, del MessageDeleter, logger *slog.Logger, inv *cmd.Invocation, channelID, label string) error {
	if !inv.InGuild() {
		return nil
	}
	if !auth.Blacklisted(ctx, inv.GuildID, inv.UserID, channelID) || auth.Privileged(ctx, inv.GuildID, inv.UserID) {
		return nil
	}

	if err := del.DeleteMessage(ctx, inv.ChannelID, inv.MessageID); err != nil {
		logger.Warn("could not delete blacklisted message",
			slog.String("channel_id", inv.ChannelID),
			slog.String("message_id", inv.MessageID),
			slog.Any("error", err),
		)
	}

	report := fmt.Sprintf("%s: user %s (%s) in guild %s, channel %s: %q",
		label, inv.Username, inv.UserID, inv.GuildID, inv.ChannelID, inv.Content)
	return UserAndLog(MsgNotAllowedHere, report)
}

// IsAdmin passes the bot owner, bot admins and holders of the manage permission.
func IsAdmin(auth Authority) Check {
	return Check{
		Name: "is_admin",
		Fn: func(ctx context.Context, inv *cmd.Invocation) error {
			if auth.Privileged(ctx, inv.GuildID, inv.UserID) {
				return nil
			}
			return User(authz.MsgNotAdmin)
		},
	}
}

// GuildOnly rejects invocations from DMs.
func GuildOnly() Check {
	return Check{
		Name: "guild_only",
		Fn: func(_ context.Context, inv *cmd.Invocation) error {
			if inv.InGuild() {
				return nil
			}
			return ErrOnlyForGuilds
		},
	}
}

// HasServerIP requires a registered server address. Privileged users bypass it.
func HasServerIP(ips ServerIPs, auth Authority, logger *slog.Logger) Check {
	return Check{
		Name: "has_server_ip",
		Fn: func(ctx context.Context, inv *cmd.Invocation) error {
			if !inv.InGuild() {
				return Log("Not in a guild")
			}
			_, ok, err := ips.ServerIP(ctx, inv.GuildID)
			if err != nil {
				logger.Warn("server address lookup failed", slog.String("guild_id", inv.GuildID), slog.Any("error", err))
			}
			if ok {
				return nil
			}
			if auth.Privileged(ctx, inv.GuildID, inv.UserID) {
				logger.Info("bypassed server address check",
					slog.String("guild_id", inv.GuildID), slog.String("user_id", inv.UserID))
				return nil
			}
			return Log("Not a minecraft server")
		},
	}
}
