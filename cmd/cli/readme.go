package main

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/keshon/lotr-bot/internal/bot"
	"github.com/keshon/lotr-bot/internal/command/core"
	v "github.com/keshon/lotr-bot/internal/version"
)

const defaultReadme = `# {{ .AppName }}

{{ .AppDescription }}

## Commands

{{ .CommandSections }}`

func newReadmeCommand() *cobra.Command {
	var tmplPath, outPath string
	c := &cobra.Command{
		Use:   "readme",
		Short: "Render the command list into README.md",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := defaultReadme
			if tmplPath != "" {
				b, err := os.ReadFile(tmplPath)
				if err != nil {
					return err
				}
				text = string(b)
			}
			out, err := renderReadme(text)
			if err != nil {
				return err
			}
			if outPath == "-" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	c.Flags().StringVar(&tmplPath, "template", "", "README template (defaults to a built-in one)")
	c.Flags().StringVar(&outPath, "out", "README.md", "output file, - for stdout")
	return c
}

func renderReadme(text string) ([]byte, error) {
	tmpl, err := template.New("readme").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}

	// Only command metadata is read; the collaborators are never called.
	registry, _ := bot.Commands(bot.Deps{DefaultPrefix: "!"})

	data := map[string]any{
		"AppName":         v.AppName,
		"AppDescription":  v.AppDescription,
		"CommandSections": core.BuildHelp(registry.GetAll()),
	}

	var out bytes.Buffer
	if err := tmpl.Execute(&out, data); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
