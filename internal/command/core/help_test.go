package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keshon/lotr-bot/internal/command"
	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

func noop(context.Context, *cmd.Invocation) error { return nil }

func TestBuildHelp(t *testing.T) {
	group := command.NewGroup("command", "Custom commands", config.CategoryCustom).
		Add(cmd.Func("define", "", noop)).
		Add(cmd.Func("remove", "", noop))

	all := []cmd.Command{
		cmd.Wrap(group, nil),
		&HelpCommand{},
		cmd.Func("ping", "Pong", noop),
	}

	want := "**" + config.CategoryInformation + "**\n" +
		"`help` - Get a list of available commands\n" +
		"`ping` - Pong\n" +
		"\n" +
		"**" + config.CategoryCustom + "**\n" +
		"`command define|remove` - Custom commands\n" +
		"\n"
	assert.Equal(t, want, BuildHelp(all))
}
