package discord

import (
	"context"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// BotAdmins reports configured bot admins of a guild.
type BotAdmins interface {
	IsBotAdmin(ctx context.Context, guildID, userID string) (bool, error)
}

// Permissions answers guild permission questions from the session state, falling
// back to the REST API when the state has not seen the guild or member.
type Permissions struct {
	s      *discordgo.Session
	admins BotAdmins
	logger *slog.Logger
}

func NewPermissions(s *discordgo.Session, admins BotAdmins, logger *slog.Logger) *Permissions {
	return &Permissions{s: s, admins: admins, logger: logger}
}

func (p *Permissions) IsAdmin(ctx context.Context, guildID, userID string) bool {
	ok, err := p.admins.IsBotAdmin(ctx, guildID, userID)
	if err != nil {
		p.logger.Warn("bot admin lookup failed",
			slog.String("guild_id", guildID), slog.String("user_id", userID), slog.Any("error", err))
		return false
	}
	return ok
}

// HasPermission reports whether the member holds perm through the guild owner
// flag or any of their roles. Administrator implies every permission.
func (p *Permissions) HasPermission(ctx context.Context, guildID, userID string, perm int64) bool {
	if guildID == "" {
		return false
	}
	guild := p.guild(ctx, guildID)
	if guild == nil {
		return false
	}
	if userID == guild.OwnerID {
		return true
	}

	member, err := p.s.State.Member(guildID, userID)
	if err != nil || member == nil {
		member, err = p.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
		if err != nil {
			p.logger.Warn("member lookup failed",
				slog.String("guild_id", guildID), slog.String("user_id", userID), slog.Any("error", err))
			return false
		}
	}

	var total int64
	if role := p.role(guild, guildID); role != nil {
		total |= role.Permissions
	}
	for _, roleID := range member.Roles {
		if role := p.role(guild, roleID); role != nil {
			total |= role.Permissions
		}
	}
	if total&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return total&perm == perm
}

func (p *Permissions) guild(ctx context.Context, guildID string) *discordgo.Guild {
	guild, err := p.s.State.Guild(guildID)
	if err == nil && guild != nil {
		return guild
	}
	guild, err = p.s.Guild(guildID, discordgo.WithContext(ctx))
	if err != nil {
		p.logger.Warn("guild lookup failed", slog.String("guild_id", guildID), slog.Any("error", err))
		return nil
	}
	return guild
}

// role finds roleID in the state, then in the guild's role list. The
// @everyone role shares the guild's ID.
func (p *Permissions) role(guild *discordgo.Guild, roleID string) *discordgo.Role {
	if role, err := p.s.State.Role(guild.ID, roleID); err == nil && role != nil {
		return role
	}
	for _, role := range guild.Roles {
		if role.ID == roleID {
			return role
		}
	}
	return nil
}
