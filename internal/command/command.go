// Package command holds what the prefix commands share: the responder they
// talk through, reaction helpers and subcommand groups.
package command

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lotr-bot/pkg/cmd"
)

const (
	SuccessEmoji = "✅"
	FailureEmoji = "❌"
)

// ErrUsage is returned when a command was called with the wrong arguments.
var ErrUsage = errors.New("invalid command usage")

// Responder sends command output.
type Responder interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	ReplyEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
}

// Succeed marks the invoking message as done.
func Succeed(ctx context.Context, r Responder, inv *cmd.Invocation) error {
	return r.React(ctx, inv.ChannelID, inv.MessageID, SuccessEmoji)
}

// Fail marks the invoking message as failed, replying with msg when set.
func Fail(ctx context.Context, r Responder, inv *cmd.Invocation, msg string) error {
	var replyErr error
	if msg != "" {
		replyErr = r.Reply(ctx, inv.ChannelID, inv.MessageID, msg)
	}
	return errors.Join(replyErr, r.React(ctx, inv.ChannelID, inv.MessageID, FailureEmoji))
}

// Shift returns a copy of inv advanced past its first argument: the argument
// becomes the name and Raw loses its first token.
func Shift(inv *cmd.Invocation) *cmd.Invocation {
	next := *inv
	if len(inv.Args) == 0 {
		next.Name, next.Raw = "", ""
		return &next
	}
	next.Name = strings.ToLower(inv.Args[0])
	next.Args = inv.Args[1:]

	raw := strings.TrimLeftFunc(inv.Raw, unicode.IsSpace)
	if end := strings.IndexFunc(raw, unicode.IsSpace); end >= 0 {
		next.Raw = strings.TrimLeftFunc(raw[end:], unicode.IsSpace)
	} else {
		next.Raw = ""
	}
	return &next
}

// Group is a command whose first argument selects a subcommand.
type Group struct {
	name        string
	description string
	category    string
	aliases     []string

	subs     map[string]cmd.Command
	names    []string
	fallback cmd.RunFunc
}

func NewGroup(name, description, category string, aliases ...string) *Group {
	return &Group{
		name:        name,
		description: description,
		category:    category,
		aliases:     aliases,
		subs:        make(map[string]cmd.Command),
	}
}

func (g *Group) Name() string        { return g.name }
func (g *Group) Description() string { return g.description }
func (g *Group) Category() string    { return g.category }
func (g *Group) Aliases() []string   { return g.aliases }

// Add registers sub under its name and aliases.
func (g *Group) Add(sub cmd.Command, aliases ...string) *Group {
	name := strings.ToLower(sub.Name())
	g.subs[name] = sub
	g.names = append(g.names, name)
	for _, a := range aliases {
		g.subs[strings.ToLower(a)] = sub
	}
	sort.Strings(g.names)
	return g
}

// Default runs when the first argument names no subcommand. The invocation is
// passed unshifted.
func (g *Group) Default(run cmd.RunFunc) *Group {
	g.fallback = run
	return g
}

// Subcommands lists the primary subcommand names.
func (g *Group) Subcommands() []string {
	return g.names
}

func (g *Group) Run(ctx context.Context, inv *cmd.Invocation) error {
	if len(inv.Args) > 0 {
		if sub, ok := g.subs[strings.ToLower(inv.Args[0])]; ok {
			return sub.Run(ctx, Shift(inv))
		}
	}
	if g.fallback != nil {
		return g.fallback(ctx, inv)
	}
	return ErrUsage
}

// Usage renders "name sub1|sub2".
func (g *Group) Usage(prefix string) string {
	return prefix + g.name + " " + strings.Join(g.names, "|")
}
