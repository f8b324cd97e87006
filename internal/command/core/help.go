package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/lotr-bot/internal/command"
	"github.com/keshon/lotr-bot/internal/config"
	"github.com/keshon/lotr-bot/internal/version"
	"github.com/keshon/lotr-bot/pkg/cmd"
)

// HelpCommand lists the registered commands by category.
type HelpCommand struct {
	Registry  *cmd.Registry
	Responder command.Responder
}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Description() string { return "Get a list of available commands" }
func (c *HelpCommand) Category() string    { return config.CategoryInformation }

func (c *HelpCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	return c.Responder.ReplyEmbed(ctx, inv.ChannelID, &discordgo.MessageEmbed{
		Title:       version.AppName + " Help",
		Description: BuildHelp(c.Registry.GetAll()),
	})
}

type subcommander interface {
	Subcommands() []string
}

// BuildHelp groups commands under their category, ordered by category weight
// and then by name.
func BuildHelp(all []cmd.Command) string {
	categoryMap := make(map[string][]cmd.Command)
	for _, c := range all {
		cat := config.CategoryInformation
		if cc, ok := cmd.Find[cmd.Categorized](c); ok {
			cat = cc.Category()
		}
		categoryMap[cat] = append(categoryMap[cat], c)
	}

	cats := make([]string, 0, len(categoryMap))
	for cat := range categoryMap {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := config.CategoryWeights[cats[i]], config.CategoryWeights[cats[j]]
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		sb.WriteString(fmt.Sprintf("**%s**\n", cat))
		cmds := categoryMap[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
		for _, c := range cmds {
			name := c.Name()
			if sc, ok := cmd.Find[subcommander](c); ok && len(sc.Subcommands()) > 0 {
				name += " " + strings.Join(sc.Subcommands(), "|")
			}
			sb.WriteString(fmt.Sprintf("`%s` - %s\n", name, c.Description()))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
