// Package bot assembles the prefix command set.
package bot

import (
	"log/slog"

	"github.com/keshon/lotr-bot/internal/check"
	"github.com/keshon/lotr-bot/internal/command"
	"github.com/keshon/lotr-bot/internal/command/core"
	"github.com/keshon/lotr-bot/internal/command/custom"
	"github.com/keshon/lotr-bot/internal/command/guild"
	"github.com/keshon/lotr-bot/internal/discord"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

// Responder is everything commands and checks send through.
type Responder interface {
	command.Responder
	check.Responder
	check.MessageDeleter
}

// Deps are the collaborators of the command set.
type Deps struct {
	Service       custom.Service
	Settings      st.GuildSettings
	Blacklist     st.Blacklist
	History       st.History
	Auth          check.Authority
	Responder     Responder
	Names         check.NameResolver
	Limiter       *check.RateLimiter
	Logger        *slog.Logger
	DefaultPrefix string
}

// Commands builds the registry and the runner for custom command names.
func Commands(d Deps) (*cmd.Registry, cmd.Command) {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	hooks := &check.Hooks{Responder: d.Responder, Names: d.Names, Logger: d.Logger}
	registry := cmd.NewRegistry()

	group, runner := custom.New(custom.Deps{
		Service:   d.Service,
		Responder: d.Responder,
		Hooks:     hooks,
		Auth:      d.Auth,
		Limiter:   d.Limiter,
		Logger:    d.Logger,
	})

	commands := []cmd.Command{
		group,
		cmd.Apply(&core.HelpCommand{Registry: registry, Responder: d.Responder},
			check.Chain(hooks, check.AllowedBlacklist(d.Auth, d.Responder, d.Logger))),
	}
	commands = append(commands, guild.New(guild.Deps{
		Settings:      d.Settings,
		Blacklist:     d.Blacklist,
		Responder:     d.Responder,
		Hooks:         hooks,
		Auth:          d.Auth,
		Logger:        d.Logger,
		DefaultPrefix: d.DefaultPrefix,
	})...)

	history := discord.WithCommandHistory(d.History, d.Names, d.Logger)
	for _, c := range commands {
		registry.Register(cmd.Apply(c, history))
	}
	return registry, runner
}
