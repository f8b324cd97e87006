// Package authz decides whether a directive's privilege tag lets an invoker
// render it. Tags map to predicates; new tags are added with Register.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ManageBotPermission grants bot administration on a guild.
const ManageBotPermission int64 = discordgo.PermissionManageGuild

// Built-in privilege tags.
const (
	TagAdmin = "admin"
	TagMeme  = "meme"
)

// User-facing denial messages.
const (
	MsgNotAdmin   = "You are not an admin on this server!"
	MsgNotAllowed = "You are not allowed to use this command here!"
)

// Request identifies who asked for what, and where.
type Request struct {
	GuildID   string
	ChannelID string
	MessageID string
	UserID    string
}

// Permissions exposes guild permission state.
type Permissions interface {
	// IsAdmin reports whether the user is a configured bot admin of the guild.
	IsAdmin(ctx context.Context, guildID, userID string) bool
	HasPermission(ctx context.Context, guildID, userID string, perm int64) bool
}

// Blacklist reports whether a user or channel is blocked in a guild.
type Blacklist interface {
	Contains(ctx context.Context, guildID, userID, channelID string) (bool, error)
}

// DeniedError is a gate rejection. It describes the side effects the caller
// must carry out: a private notice (DM) or a public reply, and whether the
// triggering message goes away.
type DeniedError struct {
	Tag           string
	Message       string
	Private       bool
	DeleteTrigger bool
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("denied by %q: %s", e.Tag, e.Message)
}

// AsDenied extracts a DeniedError from err.
func AsDenied(err error) (*DeniedError, bool) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied, true
	}
	return nil, false
}

// Predicate authorizes a request for one privilege tag.
type Predicate func(ctx context.Context, g *Gate, req Request) error

// Gate evaluates privilege tags against permissions and the blacklist.
type Gate struct {
	ownerID   string
	perms     Permissions
	blacklist Blacklist
	logger    *slog.Logger

	mu         sync.RWMutex
	predicates map[string]Predicate
}

// NewGate returns a gate with the admin and meme tags registered.
func NewGate(ownerID string, perms Permissions, blacklist Blacklist, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	g := &Gate{
		ownerID:    ownerID,
		perms:      perms,
		blacklist:  blacklist,
		logger:     logger,
		predicates: make(map[string]Predicate),
	}
	g.Register(TagAdmin, RequirePrivileged)
	g.Register(TagMeme, AllowUnlessBlacklisted)
	return g
}

// Register binds a predicate to a tag, replacing any previous one.
func (g *Gate) Register(tag string, p Predicate) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.predicates[tag] = p
}

// Authorize runs the predicate for tag. Tags match exactly; an empty or
// unknown tag is unprivileged.
func (g *Gate) Authorize(ctx context.Context, tag string, req Request) error {
	if tag == "" {
		return nil
	}

	g.mu.RLock()
	p, ok := g.predicates[tag]
	g.mu.RUnlock()
	if !ok {
		return nil
	}
	return p(ctx, g, req)
}

// Privileged reports whether the user is the bot owner, a bot admin, or holds
// ManageBotPermission in the guild.
func (g *Gate) Privileged(ctx context.Context, guildID, userID string) bool {
	if g.ownerID != "" && userID == g.ownerID {
		return true
	}
	if g.perms == nil || guildID == "" {
		return false
	}
	return g.perms.IsAdmin(ctx, guildID, userID) ||
		g.perms.HasPermission(ctx, guildID, userID, ManageBotPermission)
}

// Blacklisted reports whether the user or channel is blocked. A failed lookup
// counts as blocked.
func (g *Gate) Blacklisted(ctx context.Context, guildID, userID, channelID string) bool {
	if g.blacklist == nil {
		return false
	}
	listed, err := g.blacklist.Contains(ctx, guildID, userID, channelID)
	if err != nil {
		g.logger.Warn("blacklist lookup failed, treating as blacklisted",
			slog.String("guild_id", guildID),
			slog.String("user_id", userID),
			slog.String("channel_id", channelID),
			slog.Any("error", err),
		)
		return true
	}
	return listed
}

// RequirePrivileged is the admin predicate.
func RequirePrivileged(ctx context.Context, g *Gate, req Request) error {
	if g.Privileged(ctx, req.GuildID, req.UserID) {
		return nil
	}
	return &DeniedError{Tag: TagAdmin, Message: MsgNotAdmin}
}

// AllowUnlessBlacklisted is the meme predicate.
func AllowUnlessBlacklisted(ctx context.Context, g *Gate, req Request) error {
	if g.Privileged(ctx, req.GuildID, req.UserID) {
		return nil
	}
	if !g.Blacklisted(ctx, req.GuildID, req.UserID, req.ChannelID) {
		return nil
	}
	return &DeniedError{
		Tag:           TagMeme,
		Message:       MsgNotAllowed,
		Private:       true,
		DeleteTrigger: true,
	}
}
