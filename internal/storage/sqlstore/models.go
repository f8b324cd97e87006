package sqlstore

import "time"

// CustomCommand: one template per guild and name.
type CustomCommand struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GuildID     string    `gorm:"column:guild_id;not null;uniqueIndex:idx_custom_commands_guild_name,priority:1"`
	Name        string    `gorm:"column:name;not null;uniqueIndex:idx_custom_commands_guild_name,priority:2"`
	Body        string    `gorm:"column:body;type:text;not null"`
	Description string    `gorm:"column:description;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (CustomCommand) TableName() string { return "custom_commands" }

// BlacklistEntry: a blocked user or channel.
type BlacklistEntry struct {
	ID      uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	GuildID string `gorm:"column:guild_id;not null;uniqueIndex:idx_blacklist_subject,priority:1"`
	Scope   string `gorm:"column:scope;not null;uniqueIndex:idx_blacklist_subject,priority:2"`
	Subject string `gorm:"column:subject;not null;uniqueIndex:idx_blacklist_subject,priority:3"`
}

func (BlacklistEntry) TableName() string { return "blacklist" }

// GuildSetting: per-guild prefix and server address. Empty means unset.
type GuildSetting struct {
	GuildID  string `gorm:"column:guild_id;primaryKey"`
	Prefix   string `gorm:"column:prefix;not null;default:''"`
	ServerIP string `gorm:"column:server_ip;not null;default:''"`
}

func (GuildSetting) TableName() string { return "guild_settings" }

type BotAdmin struct {
	GuildID string `gorm:"column:guild_id;primaryKey"`
	UserID  string `gorm:"column:user_id;primaryKey"`
}

func (BotAdmin) TableName() string { return "bot_admins" }

type CommandHistory struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	GuildID     string    `gorm:"column:guild_id;not null;index"`
	ChannelID   string    `gorm:"column:channel_id;not null"`
	ChannelName string    `gorm:"column:channel_name;not null;default:''"`
	GuildName   string    `gorm:"column:guild_name;not null;default:''"`
	UserID      string    `gorm:"column:user_id;not null"`
	Username    string    `gorm:"column:username;not null;default:''"`
	Command     string    `gorm:"column:command;not null"`
	Datetime    time.Time `gorm:"column:datetime;not null"`
}

func (CommandHistory) TableName() string { return "command_history" }
