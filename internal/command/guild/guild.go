// Package guild holds the per-guild settings commands: prefix, blacklist,
// bot admins and the registered game server address.
package guild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lotr-bot/internal/check"
	"github.com/keshon/lotr-bot/internal/command"
	"github.com/keshon/lotr-bot/internal/config"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

const maxPrefixLen = 5

// Deps are the collaborators of the settings commands.
type Deps struct {
	Settings      st.GuildSettings
	Blacklist     st.Blacklist
	Responder     command.Responder
	Hooks         *check.Hooks
	Auth          check.Authority
	Logger        *slog.Logger
	DefaultPrefix string
}

type handlers struct {
	Deps
}

// New returns the settings commands, wrapped in their checks.
func New(d Deps) []cmd.Command {
	h := &handlers{Deps: d}
	admin := check.Chain(d.Hooks, check.GuildOnly(), check.IsAdmin(d.Auth))
	guildOnly := check.Chain(d.Hooks, check.GuildOnly())

	prefix := cmd.Apply(cmd.Func("prefix", "Show or change the command prefix", h.prefix), admin)

	blacklist := command.NewGroup("blacklist", "Block users or channels from using commands", config.CategorySettings).
		Add(cmd.Func("add", "Blacklist a user or channel", h.blacklistAdd)).
		Add(cmd.Func("remove", "Lift a blacklist entry", h.blacklistRemove), "delete").
		Add(cmd.Func("list", "List blacklist entries", h.blacklistList)).
		Default(h.blacklistList)

	admins := command.NewGroup("admin", "Manage bot admins", config.CategorySettings, "admins").
		Add(cmd.Func("add", "Make a user a bot admin", h.adminAdd)).
		Add(cmd.Func("remove", "Remove a bot admin", h.adminRemove), "delete").
		Add(cmd.Func("list", "List bot admins", h.adminList)).
		Default(h.adminList)

	show := cmd.Apply(cmd.Func("show", "Show the server address", h.ipShow),
		check.Chain(d.Hooks, check.HasServerIP(d.Settings, d.Auth, d.Logger)))
	ip := command.NewGroup("ip", "Show or set the game server address", config.CategorySettings, "server").
		Add(cmd.Apply(cmd.Func("set", "Set the server address", h.ipSet), admin)).
		Add(cmd.Apply(cmd.Func("remove", "Forget the server address", h.ipRemove), admin), "delete").
		Add(show).
		Default(show.Run)

	return []cmd.Command{
		&categorized{Command: prefix, category: config.CategorySettings},
		cmd.Apply(blacklist, admin),
		cmd.Apply(admins, admin),
		cmd.Apply(ip, guildOnly),
	}
}

// categorized attaches a help category to a plain command.
type categorized struct {
	cmd.Command
	category string
}

func (c *categorized) Category() string    { return c.category }
func (c *categorized) Unwrap() cmd.Command { return c.Command }

func (h *handlers) prefix(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		current, ok, err := h.Settings.Prefix(ctx, inv.GuildID)
		if err != nil {
			return err
		}
		if !ok || current == "" {
			current = h.DefaultPrefix
		}
		return h.Responder.Reply(ctx, inv.ChannelID, inv.MessageID, fmt.Sprintf("The prefix is `%s`", current))
	}

	next := inv.Args[0]
	if len(next) > maxPrefixLen || strings.ContainsAny(next, "`\"") {
		return command.Fail(ctx, h.Responder, inv,
			fmt.Sprintf("A prefix is at most %d characters and cannot contain quotes.", maxPrefixLen))
	}
	if err := h.Settings.SetPrefix(ctx, inv.GuildID, next); err != nil {
		return h.failed(ctx, inv, err)
	}
	h.Logger.Info("prefix updated", slog.String("guild_id", inv.GuildID), slog.String("prefix", next))
	return command.Succeed(ctx, h.Responder, inv)
}

func (h *handlers) blacklistAdd(ctx context.Context, inv *cmd.Invocation) error {
	entry, err := blacklistEntry(inv)
	if err != nil {
		return command.Fail(ctx, h.Responder, inv, "Usage: `blacklist add user|channel <id>`")
	}
	if err := h.Blacklist.AddBlacklist(ctx, entry); err != nil {
		return h.failed(ctx, inv, err)
	}
	return command.Succeed(ctx, h.Responder, inv)
}

func (h *handlers) blacklistRemove(ctx context.Context, inv *cmd.Invocation) error {
	entry, err := blacklistEntry(inv)
	if err != nil {
		return command.Fail(ctx, h.Responder, inv, "Usage: `blacklist remove user|channel <id>`")
	}
	if err := h.Blacklist.RemoveBlacklist(ctx, entry); err != nil {
		return h.failed(ctx, inv, err)
	}
	return command.Succeed(ctx, h.Responder, inv)
}

func (h *handlers) blacklistList(ctx context.Context, inv *cmd.Invocation) error {
	entries, err := h.Blacklist.ListBlacklist(ctx, inv.GuildID)
	if err != nil {
		return err
	}
	var users, channels []string
	for _, e := range entries {
		switch e.Scope {
		case st.ScopeUser:
			users = append(users, "<@"+e.Subject+">")
		case st.ScopeChannel:
			channels = append(channels, "<#"+e.Subject+">")
		}
	}
	return h.Responder.ReplyEmbed(ctx, inv.ChannelID, &discordgo.MessageEmbed{
		Title: "Blacklist",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Users", Value: joinOrNone(users), Inline: true},
			{Name: "Channels", Value: joinOrNone(channels), Inline: true},
		},
	})
}

func (h *handlers) adminAdd(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return command.Fail(ctx, h.Responder, inv, "Usage: `admin add <user>`")
	}
	if err := h.Settings.AddAdmin(ctx, inv.GuildID, ParseID(inv.Args[0])); err != nil {
		return h.failed(ctx, inv, err)
	}
	return command.Succeed(ctx, h.Responder, inv)
}

func (h *handlers) adminRemove(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return command.Fail(ctx, h.Responder, inv, "Usage: `admin remove <user>`")
	}
	if err := h.Settings.RemoveAdmin(ctx, inv.GuildID, ParseID(inv.Args[0])); err != nil {
		return h.failed(ctx, inv, err)
	}
	return command.Succeed(ctx, h.Responder, inv)
}

func (h *handlers) adminList(ctx context.Context, inv *cmd.Invocation) error {
	ids, err := h.Settings.ListAdmins(ctx, inv.GuildID)
	if err != nil {
		return err
	}
	mentions := make([]string, 0, len(ids))
	for _, id := range ids {
		mentions = append(mentions, "<@"+id+">")
	}
	return h.Responder.ReplyEmbed(ctx, inv.ChannelID, &discordgo.MessageEmbed{
		Title:       "Bot admins",
		Description: joinOrNone(mentions),
	})
}

func (h *handlers) ipSet(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return command.Fail(ctx, h.Responder, inv, "Usage: `ip set <address>`")
	}
	if err := h.Settings.SetServerIP(ctx, inv.GuildID, inv.Args[0]); err != nil {
		return h.failed(ctx, inv, err)
	}
	return command.Succeed(ctx, h.Responder, inv)
}

func (h *handlers) ipRemove(ctx context.Context, inv *cmd.Invocation) error {
	if err := h.Settings.RemoveServerIP(ctx, inv.GuildID); err != nil {
		return h.failed(ctx, inv, err)
	}
	return command.Succeed(ctx, h.Responder, inv)
}

func (h *handlers) ipShow(ctx context.Context, inv *cmd.Invocation) error {
	addr, ok, err := h.Settings.ServerIP(ctx, inv.GuildID)
	if err != nil {
		return err
	}
	if !ok {
		return command.Fail(ctx, h.Responder, inv, "No server address is registered.")
	}
	return h.Responder.Reply(ctx, inv.ChannelID, inv.MessageID, fmt.Sprintf("Server address: `%s`", addr))
}

// failed reacts with the failure emoji and hands err to the after hook.
func (h *handlers) failed(ctx context.Context, inv *cmd.Invocation, err error) error {
	if ferr := command.Fail(ctx, h.Responder, inv, ""); ferr != nil {
		h.Logger.Warn("could not mark failed command", slog.Any("error", ferr))
	}
	return err
}

var errBadEntry = errors.New("expected user|channel <id>")

func blacklistEntry(inv *cmd.Invocation) (st.BlacklistEntry, error) {
	if len(inv.Args) < 2 {
		return st.BlacklistEntry{}, errBadEntry
	}
	scope := st.Scope(strings.ToLower(inv.Args[0]))
	if !scope.Valid() {
		return st.BlacklistEntry{}, st.ErrInvalidScope
	}
	subject := ParseID(inv.Args[1])
	if subject == "" {
		return st.BlacklistEntry{}, errBadEntry
	}
	return st.BlacklistEntry{GuildID: inv.GuildID, Subject: subject, Scope: scope}, nil
}

// ParseID accepts a raw snowflake or a user, role or channel mention.
func ParseID(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">") {
		s = strings.TrimSuffix(s[1:], ">")
		s = strings.TrimLeft(s, "@!#&")
	}
	return s
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "_None_"
	}
	return strings.Join(items, "\n")
}
