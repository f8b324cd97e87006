// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/keshon/datastore"

	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

// Storage keeps one Record per guild in a JSON datastore.
type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc
	mu     sync.Mutex
}

var _ st.Backend = (*Storage)(nil)

// New opens the datastore file. The autosave loop runs until ctx is done or
// Close is called.
func New(ctx context.Context, filePath string, opts ...datastore.Option) (*Storage, error) {
	ctx, cancel := context.WithCancel(ctx)
	ds, err := datastore.New(ctx, filePath, opts...)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops autosave and flushes the file.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

// getOrCreateGuildRecord decodes the guild's record, or returns an empty one
// when the guild has none yet. Callers hold s.mu.
func (s *Storage) getOrCreateGuildRecord(guildID string) (*st.Record, error) {
	var record st.Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return nil, fmt.Errorf("read guild %s: %w", guildID, err)
	}
	if record.CustomCommands == nil {
		record.CustomCommands = map[string]st.CustomCommand{}
	}
	if len(record.CommandsHistory) > st.CommandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-st.CommandHistoryLimit:]
	}
	return &record, nil
}

// update runs fn on a decoded copy of the guild record and stores the result.
func (s *Storage) update(guildID string, fn func(r *st.Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if err := fn(record); err != nil {
		return err
	}
	if err := s.ds.Set(guildID, record); err != nil {
		return fmt.Errorf("write guild %s: %w", guildID, err)
	}
	return nil
}

// view runs fn on a decoded copy of the guild record.
func (s *Storage) view(guildID string, fn func(r *st.Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)
	return nil
}

func (s *Storage) AppendCommandToHistory(guildID string, command st.CommandHistory) error {
	return s.update(guildID, func(r *st.Record) error {
		r.CommandsHistory = append(r.CommandsHistory, command)
		if len(r.CommandsHistory) > st.CommandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[len(r.CommandsHistory)-st.CommandHistoryLimit:]
		}
		return nil
	})
}

func (s *Storage) AppendCommandHistory(_ context.Context, guildID string, entry st.CommandHistory) error {
	return s.AppendCommandToHistory(guildID, entry)
}

func (s *Storage) CommandHistory(_ context.Context, guildID string) ([]st.CommandHistory, error) {
	var out []st.CommandHistory
	err := s.view(guildID, func(r *st.Record) { out = r.CommandsHistory })
	return out, err
}

func (s *Storage) Prefix(_ context.Context, guildID string) (string, bool, error) {
	var prefix string
	err := s.view(guildID, func(r *st.Record) { prefix = r.Prefix })
	return prefix, prefix != "", err
}

func (s *Storage) SetPrefix(_ context.Context, guildID, prefix string) error {
	return s.update(guildID, func(r *st.Record) error {
		r.Prefix = prefix
		return nil
	})
}

func (s *Storage) ServerIP(_ context.Context, guildID string) (string, bool, error) {
	var ip string
	err := s.view(guildID, func(r *st.Record) { ip = r.ServerIP })
	return ip, ip != "", err
}

func (s *Storage) SetServerIP(_ context.Context, guildID, ip string) error {
	return s.update(guildID, func(r *st.Record) error {
		r.ServerIP = ip
		return nil
	})
}

func (s *Storage) RemoveServerIP(_ context.Context, guildID string) error {
	return s.update(guildID, func(r *st.Record) error {
		r.ServerIP = ""
		return nil
	})
}

func (s *Storage) IsBotAdmin(_ context.Context, guildID, userID string) (bool, error) {
	var ok bool
	err := s.view(guildID, func(r *st.Record) { ok = slices.Contains(r.Admins, userID) })
	return ok, err
}

func (s *Storage) AddAdmin(_ context.Context, guildID, userID string) error {
	return s.update(guildID, func(r *st.Record) error {
		if !slices.Contains(r.Admins, userID) {
			r.Admins = append(r.Admins, userID)
		}
		return nil
	})
}

func (s *Storage) RemoveAdmin(_ context.Context, guildID, userID string) error {
	return s.update(guildID, func(r *st.Record) error {
		r.Admins = slices.DeleteFunc(r.Admins, func(id string) bool { return id == userID })
		return nil
	})
}

func (s *Storage) ListAdmins(_ context.Context, guildID string) ([]string, error) {
	var out []string
	err := s.view(guildID, func(r *st.Record) { out = slices.Clone(r.Admins) })
	return out, err
}
