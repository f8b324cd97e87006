// Package cmd provides a transport-agnostic command core: a command is something
// with a name, description, and Run(ctx, invocation). How it is registered and
// dispatched (Discord prefix messages, tests) is defined by adapters that wrap this.
package cmd

import "context"

// Invocation carries what a prefix command was called with and where from.
// Raw is the message remainder after the command name, untokenized; Args is the
// same text split by the adapter. Data is an opaque adapter payload.
type Invocation struct {
	Name string
	Args []string
	Raw  string

	GuildID   string
	ChannelID string
	// ParentID is the parent channel when ChannelID is a thread.
	ParentID  string
	MessageID string
	UserID    string
	Username  string
	Content   string

	Data interface{}
}

// InGuild reports whether the invocation came from a guild channel.
func (inv *Invocation) InGuild() bool {
	return inv.GuildID != ""
}

// EffectiveChannel returns the channel used for per-channel policies: the
// parent channel for threads, the channel itself otherwise.
func (inv *Invocation) EffectiveChannel() string {
	if inv.ParentID != "" {
		return inv.ParentID
	}
	return inv.ChannelID
}

// Command is the universal contract: identity plus execution. Checks,
// subcommands and transport-specific registration stay in adapters.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliased is implemented by commands reachable under more than one name.
type Aliased interface {
	Aliases() []string
}

// Categorized is implemented by commands listed under a help category.
type Categorized interface {
	Category() string
}
