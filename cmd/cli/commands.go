package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/keshon/lotr-bot/internal/customcmd"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <guild>",
		Short: "List a guild's custom commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.ListCommands(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, s := range list {
				fmt.Fprintf(w, "%s\t%s\n", s.Name, s.Description)
			}
			return w.Flush()
		},
	}
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <guild> <name>",
		Short: "Print a stored command body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.GetCommand(cmd.Context(), args[0], customcmd.NormalizeName(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.Body)
			return nil
		},
	}
}

func newDefineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "define <guild> <name> <file|->",
		Short: "Define or replace a custom command from a JSON file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readInput(cmd.InOrStdin(), args[2])
			if err != nil {
				return err
			}
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			svc := customcmd.NewService(store, nil, nil, nil, logger)
			updated, err := svc.Define(cmd.Context(), args[0], args[1], body)
			if err != nil {
				return err
			}
			verb := "defined"
			if updated {
				verb = "updated"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", verb, customcmd.NormalizeName(args[1]))
			return nil
		},
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <guild> <name>",
		Aliases: []string{"delete"},
		Short:   "Remove a custom command",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			svc := customcmd.NewService(store, nil, nil, nil, logger)
			return svc.Remove(cmd.Context(), args[0], args[1])
		},
	}
}

// expansionView is what expand prints.
type expansionView struct {
	Type       string          `json:"type,omitempty"`
	SelfDelete bool            `json:"self_delete,omitempty"`
	Reparsed   bool            `json:"reparsed"`
	Payload    json.RawMessage `json:"payload"`
}

func newExpandCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <guild> <name> [args...]",
		Short: "Show what a custom command would render for the given arguments",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			t, err := store.GetCommand(cmd.Context(), args[0], customcmd.NormalizeName(args[1]))
			if err != nil {
				return err
			}
			exp, err := customcmd.Expand(t.Body, args[2:])
			if err != nil {
				return err
			}
			payload, err := exp.Directive.MarshalPayload()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(expansionView{
				Type:       exp.Directive.Type,
				SelfDelete: exp.Directive.SelfDelete,
				Reparsed:   exp.Reparsed,
				Payload:    payload,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newCopyCommand() *cobra.Command {
	var toBackend, toPath, toDSN string
	c := &cobra.Command{
		Use:   "copy <guild>",
		Short: "Copy a guild's commands and settings to another backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			src, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer src.Close()
			dst, err := openBackend(ctx, toBackend, toPath, toDSN)
			if err != nil {
				return err
			}
			defer dst.Close()

			n, err := copyGuild(ctx, src, dst, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d custom commands\n", n)
			return nil
		},
	}
	c.Flags().StringVar(&toBackend, "to-backend", "sqlite", "target backend")
	c.Flags().StringVar(&toPath, "to-path", "", "target datastore file")
	c.Flags().StringVar(&toDSN, "to-dsn", "", "target database DSN")
	return c
}

func copyGuild(ctx context.Context, src, dst st.Backend, guildID string) (int, error) {
	list, err := src.ListCommands(ctx, guildID)
	if err != nil {
		return 0, err
	}
	for _, s := range list {
		t, err := src.GetCommand(ctx, guildID, s.Name)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", s.Name, err)
		}
		_, getErr := dst.GetCommand(ctx, guildID, s.Name)
		if err := dst.PutCommand(ctx, guildID, s.Name, t.Body, t.Description, getErr == nil); err != nil {
			return 0, fmt.Errorf("write %s: %w", s.Name, err)
		}
	}

	entries, err := src.ListBlacklist(ctx, guildID)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := dst.AddBlacklist(ctx, e); err != nil {
			return 0, err
		}
	}

	admins, err := src.ListAdmins(ctx, guildID)
	if err != nil {
		return 0, err
	}
	for _, id := range admins {
		if err := dst.AddAdmin(ctx, guildID, id); err != nil {
			return 0, err
		}
	}

	if prefix, ok, err := src.Prefix(ctx, guildID); err != nil {
		return 0, err
	} else if ok {
		if err := dst.SetPrefix(ctx, guildID, prefix); err != nil {
			return 0, err
		}
	}
	if ip, ok, err := src.ServerIP(ctx, guildID); err != nil {
		return 0, err
	} else if ok {
		if err := dst.SetServerIP(ctx, guildID, ip); err != nil {
			return 0, err
		}
	}
	return len(list), nil
}

func readInput(stdin io.Reader, name string) (string, error) {
	if name == "-" {
		b, err := io.ReadAll(stdin)
		return string(b), err
	}
	b, err := os.ReadFile(name)
	return string(b), err
}
