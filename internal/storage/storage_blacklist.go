package storage

import (
	"context"
	"slices"

	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

// Contains reports whether the user, or the channel when given, is blacklisted.
func (s *Storage) Contains(_ context.Context, guildID, userID, channelID string) (bool, error) {
	var listed bool
	err := s.view(guildID, func(r *st.Record) {
		listed = slices.Contains(r.BlacklistUsers, userID) ||
			(channelID != "" && slices.Contains(r.BlacklistChannel, channelID))
	})
	return listed, err
}

func (s *Storage) AddBlacklist(_ context.Context, entry st.BlacklistEntry) error {
	if !entry.Scope.Valid() {
		return st.ErrInvalidScope
	}
	return s.update(entry.GuildID, func(r *st.Record) error {
		list := blacklistOf(r, entry.Scope)
		if !slices.Contains(*list, entry.Subject) {
			*list = append(*list, entry.Subject)
		}
		return nil
	})
}

func (s *Storage) RemoveBlacklist(_ context.Context, entry st.BlacklistEntry) error {
	if !entry.Scope.Valid() {
		return st.ErrInvalidScope
	}
	return s.update(entry.GuildID, func(r *st.Record) error {
		list := blacklistOf(r, entry.Scope)
		*list = slices.DeleteFunc(*list, func(id string) bool { return id == entry.Subject })
		return nil
	})
}

func (s *Storage) ListBlacklist(_ context.Context, guildID string) ([]st.BlacklistEntry, error) {
	var out []st.BlacklistEntry
	err := s.view(guildID, func(r *st.Record) {
		for _, id := range r.BlacklistUsers {
			out = append(out, st.BlacklistEntry{GuildID: guildID, Subject: id, Scope: st.ScopeUser})
		}
		for _, id := range r.BlacklistChannel {
			out = append(out, st.BlacklistEntry{GuildID: guildID, Subject: id, Scope: st.ScopeChannel})
		}
	})
	return out, err
}

func blacklistOf(r *st.Record, scope st.Scope) *[]string {
	if scope == st.ScopeChannel {
		return &r.BlacklistChannel
	}
	return &r.BlacklistUsers
}
