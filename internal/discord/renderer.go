package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"

	"github.com/keshon/lotr-bot/internal/customcmd"
)

// ErrEmptyMessage is returned for directives with neither content nor embed.
var ErrEmptyMessage = errors.New("directive has no content and no embed")

// embedFields are the payload keys that make up a top-level embed.
var embedFields = []string{
	"title", "description", "url", "color", "colour", "timestamp",
	"image", "thumbnail", "footer", "author", "fields",
}

type embedPayload struct {
	Title       string                         `json:"title"`
	Description string                         `json:"description"`
	URL         string                         `json:"url"`
	Color       *int                           `json:"color"`
	Colour      *int                           `json:"colour"`
	Timestamp   string                         `json:"timestamp"`
	Image       json.RawMessage                `json:"image"`
	Thumbnail   json.RawMessage                `json:"thumbnail"`
	Footer      *discordgo.MessageEmbedFooter  `json:"footer"`
	Author      *discordgo.MessageEmbedAuthor  `json:"author"`
	Fields      []*discordgo.MessageEmbedField `json:"fields"`
}

// BuildMessage maps a directive payload to a Discord message. Mentions in the
// rendered text never ping.
func BuildMessage(d *customcmd.Directive) (*discordgo.MessageSend, error) {
	msg := &discordgo.MessageSend{
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}

	if _, err := d.Field("content", &msg.Content); err != nil {
		return nil, fmt.Errorf("content: %w", err)
	}

	var (
		raw   json.RawMessage
		found bool
		err   error
	)
	if found, err = d.Field("embed", &raw); err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if !found {
		raw, found, err = topLevelEmbed(d)
		if err != nil {
			return nil, err
		}
	}
	if found {
		embed, err := buildEmbed(raw)
		if err != nil {
			return nil, fmt.Errorf("embed: %w", err)
		}
		if embed != nil {
			msg.Embeds = []*discordgo.MessageEmbed{embed}
		}
	}

	if strings.TrimSpace(msg.Content) == "" && len(msg.Embeds) == 0 {
		return nil, ErrEmptyMessage
	}
	return msg, nil
}

func topLevelEmbed(d *customcmd.Directive) (json.RawMessage, bool, error) {
	sub := make(map[string]json.RawMessage)
	for _, k := range embedFields {
		if v, ok := d.Payload[k]; ok {
			sub[k] = v
		}
	}
	if len(sub) == 0 {
		return nil, false, nil
	}
	raw, err := json.Marshal(sub)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func buildEmbed(raw json.RawMessage) (*discordgo.MessageEmbed, error) {
	if isNullJSON(raw) {
		return nil, nil
	}
	var p embedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	e := &discordgo.MessageEmbed{
		Title:       p.Title,
		Description: p.Description,
		URL:         p.URL,
		Timestamp:   p.Timestamp,
		Footer:      p.Footer,
		Author:      p.Author,
		Fields:      p.Fields,
	}
	switch {
	case p.Color != nil:
		e.Color = *p.Color
	case p.Colour != nil:
		e.Color = *p.Colour
	}

	img, err := mediaURL(p.Image)
	if err != nil {
		return nil, fmt.Errorf("image: %w", err)
	}
	if img != "" {
		e.Image = &discordgo.MessageEmbedImage{URL: img}
	}
	thumb, err := mediaURL(p.Thumbnail)
	if err != nil {
		return nil, fmt.Errorf("thumbnail: %w", err)
	}
	if thumb != "" {
		e.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: thumb}
	}

	if e.Title == "" && e.Description == "" && len(e.Fields) == 0 && e.Image == nil && e.Thumbnail == nil &&
		e.Footer == nil && e.Author == nil {
		return nil, nil
	}
	return e, nil
}

// mediaURL accepts "https://..." or {"url":"https://..."}.
func mediaURL(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || isNullJSON(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", err
	}
	return obj.URL, nil
}

func isNullJSON(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// Renderer sends directives to channels.
type Renderer struct {
	s *discordgo.Session
}

func NewRenderer(s *discordgo.Session) *Renderer {
	return &Renderer{s: s}
}

func (r *Renderer) Announce(ctx context.Context, channelID string, d *customcmd.Directive) error {
	msg, err := BuildMessage(d)
	if err != nil {
		return err
	}
	_, err = r.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return err
}
