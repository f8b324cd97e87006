package storage

import (
	"context"
	"sort"
	"time"

	"github.com/keshon/lotr-bot/internal/customcmd"
	st "github.com/keshon/lotr-bot/internal/storagetypes"
)

func (s *Storage) GetCommand(_ context.Context, guildID, name string) (*customcmd.Template, error) {
	var (
		cc    st.CustomCommand
		found bool
	)
	if err := s.view(guildID, func(r *st.Record) { cc, found = r.CustomCommands[name] }); err != nil {
		return nil, err
	}
	if !found {
		return nil, customcmd.ErrNotFound
	}
	return &customcmd.Template{GuildID: guildID, Name: name, Body: cc.Body, Description: cc.Description}, nil
}

// PutCommand writes the command. update is informational; the record is
// replaced either way.
func (s *Storage) PutCommand(_ context.Context, guildID, name, body, description string, _ bool) error {
	return s.update(guildID, func(r *st.Record) error {
		r.CustomCommands[name] = st.CustomCommand{
			Body:        body,
			Description: description,
			UpdatedAt:   time.Now().UTC(),
		}
		return nil
	})
}

func (s *Storage) RemoveCommand(_ context.Context, guildID, name string) error {
	return s.update(guildID, func(r *st.Record) error {
		delete(r.CustomCommands, name)
		return nil
	})
}

func (s *Storage) ListCommands(_ context.Context, guildID string) ([]customcmd.Summary, error) {
	var out []customcmd.Summary
	err := s.view(guildID, func(r *st.Record) {
		for name, cc := range r.CustomCommands {
			out = append(out, customcmd.Summary{Name: name, Description: cc.Description})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
