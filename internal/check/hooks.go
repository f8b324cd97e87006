package check

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/keshon/lotr-bot/pkg/cmd"
)

// User-facing dispatch messages.
const (
	MsgOnlyForGuilds = "This command cannot be executed in DMs!"
	MsgRateLimited   = "Wait a few seconds before using this command again!"
	FailureEmoji     = "❌"
)

// Responder delivers check failure notices.
type Responder interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	// Warn sends text to the user as a private red embed.
	Warn(ctx context.Context, userID, text string) error
}

// NameResolver gives display names for log reports. Empty means unknown.
type NameResolver interface {
	GuildName(guildID string) string
	ChannelName(channelID string) string
}

// Hooks reports check failures and command errors.
type Hooks struct {
	Responder Responder
	Names     NameResolver
	Logger    *slog.Logger
}

func (h *Hooks) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// Dispatch carries out the side effects for a rejected invocation.
func (h *Hooks) Dispatch(ctx context.Context, inv *cmd.Invocation, command string, err error) {
	log := h.logger().With(slog.String("command", command), slog.String("user_id", inv.UserID))

	checkName := ""
	var failed *CheckFailedError
	if errors.As(err, &failed) {
		checkName = failed.Check
	}

	var (
		reason  *Reason
		limited *RateLimitedError
	)
	switch {
	case errors.As(err, &reason):
		log.Info("check failed", slog.String("check", checkName), slog.String("kind", reason.Kind.String()))
		h.dispatchReason(ctx, log, inv, reason)

	case errors.Is(err, ErrOnlyForGuilds):
		if err := h.Responder.Reply(ctx, inv.ChannelID, inv.MessageID, MsgOnlyForGuilds); err != nil {
			log.Warn("could not send guild-only warning", slog.Any("error", err))
		}

	case errors.As(err, &limited):
		if limited.FirstTry {
			if err := h.Responder.Reply(ctx, inv.ChannelID, inv.MessageID, MsgRateLimited); err != nil {
				log.Warn("could not send rate limit warning", slog.Any("error", err))
			}
		}

	default:
		log.Error("dispatch error", slog.String("check", checkName), slog.Any("error", err))
	}
}

func (h *Hooks) dispatchReason(ctx context.Context, log *slog.Logger, inv *cmd.Invocation, reason *Reason) {
	switch reason.Kind {
	case KindUser:
		replyErr := h.Responder.Reply(ctx, inv.ChannelID, inv.MessageID, reason.User)
		reactErr := h.Responder.React(ctx, inv.ChannelID, inv.MessageID, FailureEmoji)
		if err := errors.Join(replyErr, reactErr); err != nil {
			log.Warn("could not send failure message", slog.Any("error", err))
		}
	case KindUserAndLog:
		log.Warn(reason.Log)
		if err := h.Responder.Warn(ctx, inv.UserID, reason.User); err != nil {
			log.Warn("could not send warning DM", slog.Any("error", err))
		}
	case KindLog:
		log.Info(reason.Log)
	default:
		log.Warn("unknown check failure kind", slog.String("kind", reason.Kind.String()))
	}
}

// After logs an error returned by a command that ran. Check failures of
// nested subcommands were already dispatched and are skipped.
func (h *Hooks) After(_ context.Context, inv *cmd.Invocation, command string, err error) {
	var failed *CheckFailedError
	if err == nil || errors.As(err, &failed) {
		return
	}

	guild := "none"
	if inv.GuildID != "" {
		guild = h.describe(inv.GuildID, "", h.guildName)
	}
	channel := h.describe(inv.ChannelID, "#", h.channelName)

	h.logger().Error("command failed",
		slog.String("command", command),
		slog.Any("error", err),
		slog.String("author", inv.Username),
		slog.String("author_id", inv.UserID),
		slog.String("guild", guild),
		slog.String("channel", channel),
		slog.String("content", inv.Content),
	)
}

func (h *Hooks) guildName(id string) string {
	if h.Names == nil {
		return ""
	}
	return h.Names.GuildName(id)
}

func (h *Hooks) channelName(id string) string {
	if h.Names == nil {
		return ""
	}
	return h.Names.ChannelName(id)
}

func (h *Hooks) describe(id, mark string, name func(string) string) string {
	if n := name(id); n != "" {
		return fmt.Sprintf("%s%s, %s", mark, n, id)
	}
	return id
}
