package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type aliasedCommand struct {
	Command
}

func (aliasedCommand) Aliases() []string { return []string{"Cmd", "custom"} }

func TestApplyOrder(t *testing.T) {
	var trace []string
	mw := func(tag string) Middleware {
		return func(next Command) Command {
			return Wrap(next, func(ctx context.Context, inv *Invocation) error {
				trace = append(trace, tag)
				return next.Run(ctx, inv)
			})
		}
	}

	base := Func("ping", "", func(context.Context, *Invocation) error {
		trace = append(trace, "run")
		return nil
	})
	c := Apply(base, mw("outer"), mw("inner"))

	require.NoError(t, c.Run(context.Background(), &Invocation{}))
	assert.Equal(t, []string{"outer", "inner", "run"}, trace)
	assert.Same(t, base, Root(c))
	assert.Equal(t, "ping", c.Name())
}

func TestRegistryAliasesAreCaseInsensitive(t *testing.T) {
	r := NewRegistry()
	inner := aliasedCommand{Func("command", "custom commands", func(context.Context, *Invocation) error { return nil })}
	r.Register(Wrap(inner, nil))

	require.NotNil(t, r.Get("COMMAND"))
	require.NotNil(t, r.Get("cmd"))
	require.NotNil(t, r.Get("Custom"))
	assert.Nil(t, r.Get("unknown"))
	assert.Len(t, r.GetAll(), 1)
}

func TestEffectiveChannel(t *testing.T) {
	inv := &Invocation{ChannelID: "thread"}
	assert.Equal(t, "thread", inv.EffectiveChannel())
	inv.ParentID = "parent"
	assert.Equal(t, "parent", inv.EffectiveChannel())
	assert.False(t, inv.InGuild())
}

type categorizedCommand struct {
	Command
}

func (categorizedCommand) Category() string  { return "lore" }
func (c categorizedCommand) Unwrap() Command { return c.Command }

func TestFind(t *testing.T) {
	base := Func("lore", "", func(context.Context, *Invocation) error { return nil })
	c := Wrap(categorizedCommand{Wrap(base, nil)}, nil)

	cat, ok := Find[Categorized](c)
	require.True(t, ok)
	assert.Equal(t, "lore", cat.Category())
	assert.Same(t, base, Root(c))

	_, ok = Find[Aliased](c)
	assert.False(t, ok)
}
