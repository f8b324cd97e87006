package storagetypes

import (
	"context"
	"errors"
	"time"

	"github.com/keshon/lotr-bot/internal/customcmd"
)

// CommandHistoryLimit is how many history entries a guild keeps.
const CommandHistoryLimit = 20

// ErrInvalidScope is returned for blacklist entries that are neither user nor channel.
var ErrInvalidScope = errors.New("blacklist scope must be user or channel")

type Scope string

const (
	ScopeUser    Scope = "user"
	ScopeChannel Scope = "channel"
)

func (s Scope) Valid() bool {
	return s == ScopeUser || s == ScopeChannel
}

type BlacklistEntry struct {
	GuildID string `json:"guild_id"`
	Subject string `json:"subject"`
	Scope   Scope  `json:"scope"`
}

type CommandHistory struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Datetime    time.Time `json:"datetime"`
}

type CustomCommand struct {
	Body        string    `json:"body"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Record is everything stored for one guild in the JSON datastore.
type Record struct {
	Prefix           string                   `json:"prefix"`
	ServerIP         string                   `json:"server_ip"`
	Admins           []string                 `json:"admins"`
	BlacklistUsers   []string                 `json:"blacklist_users"`
	BlacklistChannel []string                 `json:"blacklist_channels"`
	CustomCommands   map[string]CustomCommand `json:"custom_commands"`
	CommandsHistory  []CommandHistory         `json:"commands_history"`
}

// Blacklist is the blacklist half of a backend.
type Blacklist interface {
	Contains(ctx context.Context, guildID, userID, channelID string) (bool, error)
	AddBlacklist(ctx context.Context, entry BlacklistEntry) error
	RemoveBlacklist(ctx context.Context, entry BlacklistEntry) error
	ListBlacklist(ctx context.Context, guildID string) ([]BlacklistEntry, error)
}

// GuildSettings covers prefix, server address and bot admins.
type GuildSettings interface {
	// Prefix reports ok=false when the guild never set one.
	Prefix(ctx context.Context, guildID string) (prefix string, ok bool, err error)
	SetPrefix(ctx context.Context, guildID, prefix string) error

	ServerIP(ctx context.Context, guildID string) (ip string, ok bool, err error)
	SetServerIP(ctx context.Context, guildID, ip string) error
	RemoveServerIP(ctx context.Context, guildID string) error

	IsBotAdmin(ctx context.Context, guildID, userID string) (bool, error)
	AddAdmin(ctx context.Context, guildID, userID string) error
	RemoveAdmin(ctx context.Context, guildID, userID string) error
	ListAdmins(ctx context.Context, guildID string) ([]string, error)
}

// History records executed commands.
type History interface {
	AppendCommandHistory(ctx context.Context, guildID string, entry CommandHistory) error
	CommandHistory(ctx context.Context, guildID string) ([]CommandHistory, error)
}

// Backend is a complete storage implementation.
type Backend interface {
	customcmd.Store
	Blacklist
	GuildSettings
	History
	Close() error
}
