// Package custom exposes guild-defined commands: the "command" group that
// defines, removes and shows them, and the runner for bare custom names.
package custom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lotr-bot/internal/authz"
	"github.com/keshon/lotr-bot/internal/check"
	"github.com/keshon/lotr-bot/internal/command"
	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/internal/customcmd"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

// Longest stored body shown inline by display.
const maxDisplayBody = 1012

// User-facing messages.
const (
	MsgNotFound  = "The custom command does not exist!"
	MsgTooLong   = "_Too long to display here_"
	MsgNoDesc    = "_No description_"
	MsgNoneYet   = "_No custom commands yet_"
	msgReserved  = "You cannot add a command with the reserved name `%s`"
	msgBadBody   = "The command body is not valid JSON: %s"
	msgNeedName  = "You need to give the command a name."
	msgNeedInput = "Usage: `command <name> [args...]` or `command define|remove|display ...`"
)

// Service is the custom command pipeline.
type Service interface {
	Define(ctx context.Context, guildID, name, raw string) (bool, error)
	Remove(ctx context.Context, guildID, name string) error
	Display(ctx context.Context, guildID, name string) (*customcmd.Template, error)
	List(ctx context.Context, guildID string) ([]customcmd.Summary, error)
	Invoke(ctx context.Context, req authz.Request, name string, args []string) error
}

// Deps are the collaborators of the custom commands.
type Deps struct {
	Service   Service
	Responder command.Responder
	Hooks     *check.Hooks
	Auth      check.Authority
	Limiter   *check.RateLimiter
	Logger    *slog.Logger
}

type handlers struct {
	Deps
}

// New returns the "command" group and the runner used for unknown command
// names. Both are wrapped in their checks.
func New(d Deps) (group cmd.Command, runner cmd.Command) {
	h := &handlers{Deps: d}
	admin := check.Chain(d.Hooks, check.IsAdmin(d.Auth))

	g := command.NewGroup("command", "Define, show and run custom commands", config.CategoryCustom, "custom_command").
		Add(cmd.Apply(cmd.Func("define", "Define or replace a custom command", h.define), admin)).
		Add(cmd.Apply(cmd.Func("remove", "Remove a custom command", h.remove), admin), "delete").
		Add(cmd.Apply(cmd.Func("display", "Show a custom command or list them all", h.display), admin), "show").
		Default(h.invokeArgs)

	group = cmd.Apply(g, check.Chain(d.Hooks, check.GuildOnly(), check.RateLimit(d.Limiter)))

	run := cmd.Func("custom", "Run a custom command", h.invokeName)
	runner = cmd.Apply(run, skipDirect, check.Chain(d.Hooks, check.RateLimit(d.Limiter)))
	return group, runner
}

// skipDirect drops direct messages before any check runs. DMs have no custom
// commands.
func skipDirect(next cmd.Command) cmd.Command {
	return cmd.Wrap(next, func(ctx context.Context, inv *cmd.Invocation) error {
		if !inv.InGuild() {
			return nil
		}
		return next.Run(ctx, inv)
	})
}

func request(inv *cmd.Invocation) authz.Request {
	return authz.Request{
		GuildID:   inv.GuildID,
		ChannelID: inv.ChannelID,
		MessageID: inv.MessageID,
		UserID:    inv.UserID,
	}
}

// invokeArgs runs "command <name> args...".
func (h *handlers) invokeArgs(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return command.Fail(ctx, h.Responder, inv, msgNeedInput)
	}
	return h.invoke(ctx, inv, inv.Args[0], inv.Args[1:])
}

// invokeName runs a bare "<name> args..." message.
func (h *handlers) invokeName(ctx context.Context, inv *cmd.Invocation) error {
	return h.invoke(ctx, inv, inv.Name, inv.Args)
}

// invoke reports only errors the service has not already handled: denials
// carry out their own side effects, and malformed bodies and render failures
// are logged by the service.
func (h *handlers) invoke(ctx context.Context, inv *cmd.Invocation, name string, args []string) error {
	err := h.Service.Invoke(ctx, request(inv), name, args)
	var rerr *customcmd.RenderError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, customcmd.ErrNotFound), customcmd.IsMalformed(err), errors.As(err, &rerr):
		return nil
	}
	if _, denied := authz.AsDenied(err); denied {
		return nil
	}
	return err
}

func (h *handlers) define(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return command.Fail(ctx, h.Responder, inv, msgNeedName)
	}
	name := customcmd.NormalizeName(inv.Args[0])
	body := command.Shift(inv).Raw

	_, err := h.Service.Define(ctx, inv.GuildID, name, body)
	var malformed *customcmd.MalformedTemplateError
	switch {
	case err == nil:
		return command.Succeed(ctx, h.Responder, inv)
	case errors.Is(err, customcmd.ErrReservedName):
		return command.Fail(ctx, h.Responder, inv, fmt.Sprintf(msgReserved, name))
	case errors.Is(err, customcmd.ErrEmptyName):
		return command.Fail(ctx, h.Responder, inv, msgNeedName)
	case errors.As(err, &malformed):
		return command.Fail(ctx, h.Responder, inv, fmt.Sprintf(msgBadBody, malformed.Err))
	default:
		if ferr := command.Fail(ctx, h.Responder, inv, ""); ferr != nil {
			h.Logger.Warn("could not mark failed definition", slog.Any("error", ferr))
		}
		return err
	}
}

func (h *handlers) remove(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		return command.Fail(ctx, h.Responder, inv, msgNeedName)
	}
	err := h.Service.Remove(ctx, inv.GuildID, inv.Args[0])
	switch {
	case err == nil:
		return command.Succeed(ctx, h.Responder, inv)
	case errors.Is(err, customcmd.ErrNotFound):
		return command.Fail(ctx, h.Responder, inv, "")
	default:
		if ferr := command.Fail(ctx, h.Responder, inv, ""); ferr != nil {
			h.Logger.Warn("could not mark failed removal", slog.Any("error", ferr))
		}
		return err
	}
}

func (h *handlers) display(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) == 0 {
		list, err := h.Service.List(ctx, inv.GuildID)
		if err != nil {
			return err
		}
		return h.Responder.ReplyEmbed(ctx, inv.ChannelID, &discordgo.MessageEmbed{
			Title:       "Custom commands",
			Description: FormatList(list),
		})
	}

	name := customcmd.NormalizeName(inv.Args[0])
	t, err := h.Service.Display(ctx, inv.GuildID, name)
	if err != nil {
		return command.Fail(ctx, h.Responder, inv, MsgNotFound)
	}
	return h.Responder.ReplyEmbed(ctx, inv.ChannelID, DisplayEmbed(name, t))
}

// DisplayEmbed shows one command's description and body.
func DisplayEmbed(name string, t *customcmd.Template) *discordgo.MessageEmbed {
	value := MsgTooLong
	if len(t.Body) <= maxDisplayBody {
		value = "```json\n" + strings.ReplaceAll(t.Body, "```", "`\u200B``") + "```"
	}
	return &discordgo.MessageEmbed{
		Title:       "Custom command: " + name,
		Description: t.Description,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Command body", Value: value},
		},
	}
}

// FormatList renders documented commands first, then a blank line and the
// undocumented ones. Each group keeps the order of list.
func FormatList(list []customcmd.Summary) string {
	if len(list) == 0 {
		return MsgNoneYet
	}

	var documented, undocumented []customcmd.Summary
	for _, s := range list {
		if s.Description == "" {
			undocumented = append(undocumented, s)
		} else {
			documented = append(documented, s)
		}
	}

	var sb strings.Builder
	for _, s := range documented {
		fmt.Fprintf(&sb, "`%s`  %s\n", s.Name, s.Description)
	}
	for i, s := range undocumented {
		if i == 0 && len(documented) > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "`%s`  %s\n", s.Name, MsgNoDesc)
	}
	return sb.String()
}
