package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

// Contains reports whether the user, or the channel when given, is blacklisted.
func (s *Store) Contains(ctx context.Context, guildID, userID, channelID string) (bool, error) {
	q := s.db.WithContext(ctx).Model(&BlacklistEntry{}).
		Where("guild_id = ?", guildID)
	if channelID != "" {
		q = q.Where("((scope = ? AND subject = ?) OR (scope = ? AND subject = ?))",
			string(st.ScopeUser), userID, string(st.ScopeChannel), channelID)
	} else {
		q = q.Where("scope = ? AND subject = ?", string(st.ScopeUser), userID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("query blacklist failed: %w", err)
	}
	return n > 0, nil
}

func (s *Store) AddBlacklist(ctx context.Context, entry st.BlacklistEntry) error {
	if !entry.Scope.Valid() {
		return st.ErrInvalidScope
	}
	row := BlacklistEntry{GuildID: entry.GuildID, Scope: string(entry.Scope), Subject: entry.Subject}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("insert blacklist entry failed: %w", err)
	}
	return nil
}

func (s *Store) RemoveBlacklist(ctx context.Context, entry st.BlacklistEntry) error {
	if !entry.Scope.Valid() {
		return st.ErrInvalidScope
	}
	err := s.db.WithContext(ctx).
		Where("guild_id = ? AND scope = ? AND subject = ?", entry.GuildID, string(entry.Scope), entry.Subject).
		Delete(&BlacklistEntry{}).Error
	if err != nil {
		return fmt.Errorf("delete blacklist entry failed: %w", err)
	}
	return nil
}

func (s *Store) ListBlacklist(ctx context.Context, guildID string) ([]st.BlacklistEntry, error) {
	var rows []BlacklistEntry
	if err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("scope DESC, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list blacklist failed: %w", err)
	}
	out := make([]st.BlacklistEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, st.BlacklistEntry{GuildID: r.GuildID, Subject: r.Subject, Scope: st.Scope(r.Scope)})
	}
	return out, nil
}

func (s *Store) setting(ctx context.Context, guildID string) (GuildSetting, error) {
	var row GuildSetting
	err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return GuildSetting{GuildID: guildID}, nil
	}
	if err != nil {
		return row, fmt.Errorf("query guild settings failed: %w", err)
	}
	return row, nil
}

func (s *Store) upsertSetting(ctx context.Context, row GuildSetting, column string) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}},
		DoUpdates: clause.AssignmentColumns([]string{column}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert guild %s failed: %w", column, err)
	}
	return nil
}

func (s *Store) Prefix(ctx context.Context, guildID string) (string, bool, error) {
	row, err := s.setting(ctx, guildID)
	return row.Prefix, row.Prefix != "", err
}

func (s *Store) SetPrefix(ctx context.Context, guildID, prefix string) error {
	return s.upsertSetting(ctx, GuildSetting{GuildID: guildID, Prefix: prefix}, "prefix")
}

func (s *Store) ServerIP(ctx context.Context, guildID string) (string, bool, error) {
	row, err := s.setting(ctx, guildID)
	return row.ServerIP, row.ServerIP != "", err
}

func (s *Store) SetServerIP(ctx context.Context, guildID, ip string) error {
	return s.upsertSetting(ctx, GuildSetting{GuildID: guildID, ServerIP: ip}, "server_ip")
}

func (s *Store) RemoveServerIP(ctx context.Context, guildID string) error {
	return s.upsertSetting(ctx, GuildSetting{GuildID: guildID}, "server_ip")
}

func (s *Store) IsBotAdmin(ctx context.Context, guildID, userID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&BotAdmin{}).
		Where("guild_id = ? AND user_id = ?", guildID, userID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("query bot admin failed: %w", err)
	}
	return n > 0, nil
}

func (s *Store) AddAdmin(ctx context.Context, guildID, userID string) error {
	row := BotAdmin{GuildID: guildID, UserID: userID}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return fmt.Errorf("insert bot admin failed: %w", err)
	}
	return nil
}

func (s *Store) RemoveAdmin(ctx context.Context, guildID, userID string) error {
	err := s.db.WithContext(ctx).Where("guild_id = ? AND user_id = ?", guildID, userID).Delete(&BotAdmin{}).Error
	if err != nil {
		return fmt.Errorf("delete bot admin failed: %w", err)
	}
	return nil
}

func (s *Store) ListAdmins(ctx context.Context, guildID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&BotAdmin{}).
		Where("guild_id = ?", guildID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list bot admins failed: %w", err)
	}
	return ids, nil
}

// AppendCommandHistory inserts the entry and trims the guild's history to
// the newest CommandHistoryLimit rows.
func (s *Store) AppendCommandHistory(ctx context.Context, guildID string, entry st.CommandHistory) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := CommandHistory{
			GuildID:     guildID,
			ChannelID:   entry.ChannelID,
			ChannelName: entry.ChannelName,
			GuildName:   entry.GuildName,
			UserID:      entry.UserID,
			Username:    entry.Username,
			Command:     entry.Command,
			Datetime:    entry.Datetime,
		}
		if err := tx.Create(&row).Error; err != nil {
			return fmt.Errorf("insert command history failed: %w", err)
		}

		keep := tx.Model(&CommandHistory{}).
			Select("id").
			Where("guild_id = ?", guildID).
			Order("id DESC").
			Limit(st.CommandHistoryLimit)
		if err := tx.Where("guild_id = ? AND id NOT IN (?)", guildID, keep).Delete(&CommandHistory{}).Error; err != nil {
			return fmt.Errorf("trim command history failed: %w", err)
		}
		return nil
	})
}

func (s *Store) CommandHistory(ctx context.Context, guildID string) ([]st.CommandHistory, error) {
	var rows []CommandHistory
	if err := s.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list command history failed: %w", err)
	}
	out := make([]st.CommandHistory, 0, len(rows))
	for _, r := range rows {
		out = append(out, st.CommandHistory{
			ChannelID:   r.ChannelID,
			ChannelName: r.ChannelName,
			GuildName:   r.GuildName,
			UserID:      r.UserID,
			Username:    r.Username,
			Command:     r.Command,
			Datetime:    r.Datetime,
		})
	}
	return out, nil
}
