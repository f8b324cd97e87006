package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/lotr-bot/internal/customcmd"
)

func directive(t *testing.T, body string) *customcmd.Directive {
	t.Helper()
	d, err := customcmd.ParseDirective(body)
	require.NoError(t, err)
	return d
}

func TestBuildMessageContent(t *testing.T) {
	msg, err := BuildMessage(directive(t, `{"content":"Hello @everyone","type":"meme"}`))
	require.NoError(t, err)

	assert.Equal(t, "Hello @everyone", msg.Content)
	assert.Empty(t, msg.Embeds)
	require.NotNil(t, msg.AllowedMentions)
	assert.Empty(t, msg.AllowedMentions.Parse)
	assert.NotNil(t, msg.AllowedMentions.Parse)
}

func TestBuildMessageEmbedObject(t *testing.T) {
	msg, err := BuildMessage(directive(t, `{
		"embed": {
			"title": "Mordor",
			"description": "One does not simply walk in",
			"colour": 16711680,
			"image": "https://example.org/mordor.png",
			"thumbnail": {"url": "https://example.org/eye.png"},
			"footer": {"text": "Boromir"},
			"fields": [{"name": "Distance", "value": "far", "inline": true}]
		}
	}`))
	require.NoError(t, err)
	require.Len(t, msg.Embeds, 1)

	e := msg.Embeds[0]
	assert.Equal(t, "Mordor", e.Title)
	assert.Equal(t, "One does not simply walk in", e.Description)
	assert.Equal(t, 0xff0000, e.Color)
	assert.Equal(t, &discordgo.MessageEmbedImage{URL: "https://example.org/mordor.png"}, e.Image)
	assert.Equal(t, &discordgo.MessageEmbedThumbnail{URL: "https://example.org/eye.png"}, e.Thumbnail)
	require.NotNil(t, e.Footer)
	assert.Equal(t, "Boromir", e.Footer.Text)
	require.Len(t, e.Fields, 1)
	assert.True(t, e.Fields[0].Inline)
}

func TestBuildMessageTopLevelEmbed(t *testing.T) {
	msg, err := BuildMessage(directive(t, `{"title":"Shire","color":65280,"content":"hi"}`))
	require.NoError(t, err)

	assert.Equal(t, "hi", msg.Content)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "Shire", msg.Embeds[0].Title)
	assert.Equal(t, 0x00ff00, msg.Embeds[0].Color)
}

func TestBuildMessageEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"no fields":     `{"type":"admin","self_delete":true}`,
		"blank content": `{"content":"   "}`,
		"empty embed":   `{"embed":{"color":1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := BuildMessage(directive(t, body))
			assert.ErrorIs(t, err, ErrEmptyMessage)
		})
	}
}

func TestBuildMessageBadField(t *testing.T) {
	_, err := BuildMessage(directive(t, `{"content":42}`))
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyMessage)
}
