// Package sqlstore is the relational storage backend (PostgreSQL, or SQLite
// for single-host setups and tests).
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/keshon/lotr-bot/internal/customcmd"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

// Store: gorm-backed implementation of storagetypes.Backend.
type Store struct {
	db *gorm.DB
}

var _ st.Backend = (*Store)(nil)

// New wraps an open connection. Call AutoMigrate before use.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Open connects with the named driver ("postgres" or "sqlite"), pings and migrates.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("gorm open failed: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db failed: %w", err)
	}
	if driver == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db ping failed: %w", err)
	}

	s := New(db)
	if err := s.AutoMigrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

// AutoMigrate creates or updates the schema.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := s.db.WithContext(ctx).AutoMigrate(
		&CustomCommand{},
		&BlacklistEntry{},
		&GuildSetting{},
		&BotAdmin{},
		&CommandHistory{},
	); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) GetCommand(ctx context.Context, guildID, name string) (*customcmd.Template, error) {
	var row CustomCommand
	err := s.db.WithContext(ctx).Where("guild_id = ? AND name = ?", guildID, name).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, customcmd.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query custom command failed: %w", err)
	}
	return &customcmd.Template{GuildID: row.GuildID, Name: row.Name, Body: row.Body, Description: row.Description}, nil
}

func (s *Store) PutCommand(ctx context.Context, guildID, name, body, description string, _ bool) error {
	row := CustomCommand{GuildID: guildID, Name: name, Body: body, Description: description}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "description", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert custom command failed: %w", err)
	}
	return nil
}

func (s *Store) RemoveCommand(ctx context.Context, guildID, name string) error {
	err := s.db.WithContext(ctx).Where("guild_id = ? AND name = ?", guildID, name).Delete(&CustomCommand{}).Error
	if err != nil {
		return fmt.Errorf("delete custom command failed: %w", err)
	}
	return nil
}

func (s *Store) ListCommands(ctx context.Context, guildID string) ([]customcmd.Summary, error) {
	var rows []CustomCommand
	err := s.db.WithContext(ctx).
		Select("name", "description").
		Where("guild_id = ?", guildID).
		Order("name").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list custom commands failed: %w", err)
	}
	out := make([]customcmd.Summary, 0, len(rows))
	for _, r := range rows {
		out = append(out, customcmd.Summary{Name: r.Name, Description: r.Description})
	}
	return out, nil
}
