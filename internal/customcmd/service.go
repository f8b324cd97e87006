// Package customcmd implements guild-defined chat commands: JSON templates with
// positional placeholders that are expanded, authorized and rendered on use.
package customcmd

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/keshon/lotr-bot/internal/authz"
)

// Template is a stored custom command.
type Template struct {
	GuildID     string
	Name        string
	Body        string
	Description string
}

// Summary is one entry of a guild's command list.
type Summary struct {
	Name        string
	Description string
}

// Store persists templates per guild. Names are lowercase.
type Store interface {
	// GetCommand returns ErrNotFound when the guild has no such command.
	GetCommand(ctx context.Context, guildID, name string) (*Template, error)
	PutCommand(ctx context.Context, guildID, name, body, description string, update bool) error
	RemoveCommand(ctx context.Context, guildID, name string) error
	ListCommands(ctx context.Context, guildID string) ([]Summary, error)
}

// Authorizer resolves a privilege tag.
type Authorizer interface {
	Authorize(ctx context.Context, tag string, req authz.Request) error
}

// Renderer turns a directive into a visible message.
type Renderer interface {
	Announce(ctx context.Context, channelID string, d *Directive) error
}

// Notifier carries out the side effects of denials and self-deleting commands.
type Notifier interface {
	Reply(ctx context.Context, channelID, messageID, content string) error
	React(ctx context.Context, channelID, messageID, emoji string) error
	DirectMessage(ctx context.Context, userID, content string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
}

// FailureEmoji marks a refused or failed command.
const FailureEmoji = "❌"

// DefaultReservedNames can't be used for custom commands.
var DefaultReservedNames = []string{
	"command", "define", "remove", "delete", "display", "show",
	"help", "prefix", "blacklist", "admin", "ip",
}

// Service runs the define/display/list/remove/invoke operations.
type Service struct {
	store    Store
	gate     Authorizer
	renderer Renderer
	notifier Notifier
	logger   *slog.Logger
	reserved map[string]struct{}
}

// Option configures a Service.
type Option func(*Service)

// WithReservedNames replaces the reserved name list.
func WithReservedNames(names ...string) Option {
	return func(s *Service) {
		s.reserved = make(map[string]struct{}, len(names))
		for _, n := range names {
			s.reserved[strings.ToLower(n)] = struct{}{}
		}
	}
}

// NewService wires the pipeline's collaborators.
func NewService(store Store, gate Authorizer, renderer Renderer, notifier Notifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:    store,
		gate:     gate,
		renderer: renderer,
		notifier: notifier,
		logger:   logger,
	}
	WithReservedNames(DefaultReservedNames...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeName lowercases and trims a command name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Define validates raw as a template and stores it under name. It reports
// whether an existing command was replaced. A body that fails to parse is
// returned as a MalformedTemplateError and nothing is stored.
func (s *Service) Define(ctx context.Context, guildID, name, raw string) (bool, error) {
	name = NormalizeName(name)
	if name == "" {
		return false, ErrEmptyName
	}
	if _, ok := s.reserved[name]; ok {
		return false, ErrReservedName
	}

	body := ExtractBody(raw)
	exp, err := Expand(body, nil)
	if err != nil {
		return false, withName(err, name)
	}

	update := false
	switch _, err := s.store.GetCommand(ctx, guildID, name); {
	case err == nil:
		update = true
	case !errors.Is(err, ErrNotFound):
		s.logger.Warn("custom command existence check failed",
			slog.String("guild_id", guildID), slog.String("name", name), slog.Any("error", err))
	}

	description := exp.Initial.Documentation
	if err := s.store.PutCommand(ctx, guildID, name, body, description, update); err != nil {
		return false, &StoreUnavailableError{Operation: "put", Err: err}
	}
	if _, err := s.store.GetCommand(ctx, guildID, name); err != nil {
		return false, &StoreUnavailableError{Operation: "verify put", Err: err}
	}

	s.logger.Info("custom command defined",
		slog.String("guild_id", guildID),
		slog.String("name", name),
		slog.Bool("update", update),
	)
	return update, nil
}

// Remove deletes a command and checks it is gone.
func (s *Service) Remove(ctx context.Context, guildID, name string) error {
	name = NormalizeName(name)
	if _, err := s.lookup(ctx, guildID, name); err != nil {
		return err
	}
	if err := s.store.RemoveCommand(ctx, guildID, name); err != nil {
		return &StoreUnavailableError{Operation: "remove", Err: err}
	}
	switch _, err := s.store.GetCommand(ctx, guildID, name); {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return &StoreUnavailableError{Operation: "verify remove", Err: err}
	default:
		return &StoreUnavailableError{Operation: "verify remove", Err: errors.New("command still present")}
	}

	s.logger.Info("custom command removed", slog.String("guild_id", guildID), slog.String("name", name))
	return nil
}

// Display returns the stored template for documentation.
func (s *Service) Display(ctx context.Context, guildID, name string) (*Template, error) {
	return s.lookup(ctx, guildID, NormalizeName(name))
}

// List returns the guild's commands.
func (s *Service) List(ctx context.Context, guildID string) ([]Summary, error) {
	list, err := s.store.ListCommands(ctx, guildID)
	if err != nil {
		return nil, &StoreUnavailableError{Operation: "list", Err: err}
	}
	return list, nil
}

// Invoke expands, authorizes and renders a command. Every failure ends the
// invocation: a missing command or malformed body produces no message, a
// denial carries out its side effects, a render failure is logged.
func (s *Service) Invoke(ctx context.Context, req authz.Request, name string, args []string) error {
	name = NormalizeName(name)
	t, err := s.lookup(ctx, req.GuildID, name)
	if err != nil {
		s.logger.Info("could not find custom command", slog.String("guild_id", req.GuildID), slog.String("name", name))
		return err
	}

	exp, err := Expand(t.Body, args)
	if err != nil {
		err = withName(err, name)
		s.logger.Error("custom command expansion failed",
			slog.String("guild_id", req.GuildID), slog.String("name", name), slog.Any("error", err))
		return err
	}

	if err := s.authorize(ctx, exp, req); err != nil {
		if denied, ok := authz.AsDenied(err); ok {
			s.deny(ctx, req, denied)
		}
		return err
	}

	if err := s.renderer.Announce(ctx, req.ChannelID, exp.Directive); err != nil {
		rerr := &RenderError{ChannelID: req.ChannelID, Err: err}
		s.logger.Error("custom command render failed",
			slog.String("guild_id", req.GuildID), slog.String("name", name), slog.Any("error", rerr))
		return rerr
	}

	if exp.Directive.SelfDelete {
		if err := s.notifier.DeleteMessage(ctx, req.ChannelID, req.MessageID); err != nil {
			s.logger.Warn("could not delete invoking message",
				slog.String("channel_id", req.ChannelID), slog.String("message_id", req.MessageID), slog.Any("error", err))
		}
	}
	return nil
}

// authorize checks the tag seen before defaults were applied and, if defaults
// changed it, the final one too.
func (s *Service) authorize(ctx context.Context, exp *Expansion, req authz.Request) error {
	if err := s.gate.Authorize(ctx, exp.Initial.Type, req); err != nil {
		return err
	}
	if exp.Reparsed && exp.Directive.Type != exp.Initial.Type {
		return s.gate.Authorize(ctx, exp.Directive.Type, req)
	}
	return nil
}

func (s *Service) deny(ctx context.Context, req authz.Request, denied *authz.DeniedError) {
	if denied.DeleteTrigger {
		if err := s.notifier.DeleteMessage(ctx, req.ChannelID, req.MessageID); err != nil {
			s.logger.Warn("could not delete denied message", slog.String("message_id", req.MessageID), slog.Any("error", err))
		}
	}
	if denied.Private {
		if err := s.notifier.DirectMessage(ctx, req.UserID, denied.Message); err != nil {
			s.logger.Warn("could not send denial DM", slog.String("user_id", req.UserID), slog.Any("error", err))
		}
		return
	}
	if err := s.notifier.Reply(ctx, req.ChannelID, req.MessageID, denied.Message); err != nil {
		s.logger.Warn("could not send denial reply", slog.String("channel_id", req.ChannelID), slog.Any("error", err))
	}
	if err := s.notifier.React(ctx, req.ChannelID, req.MessageID, FailureEmoji); err != nil {
		s.logger.Warn("could not react to denied message", slog.String("message_id", req.MessageID), slog.Any("error", err))
	}
}

// lookup treats store failures as a missing command.
func (s *Service) lookup(ctx context.Context, guildID, name string) (*Template, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	t, err := s.store.GetCommand(ctx, guildID, name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("custom command lookup failed",
			slog.String("guild_id", guildID), slog.String("name", name), slog.Any("error", err))
	}
	return nil, ErrNotFound
}

func withName(err error, name string) error {
	var malformed *MalformedTemplateError
	if errors.As(err, &malformed) && malformed.Name == "" {
		malformed.Name = name
	}
	return err
}
