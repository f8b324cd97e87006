package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Embed colors.
const (
	EmbedColor = 0xb01e66
	WarnColor  = 0xe03c3c
)

// Responder performs message side effects on behalf of commands and checks.
type Responder struct {
	s *discordgo.Session
}

func NewResponder(s *discordgo.Session) *Responder {
	return &Responder{s: s}
}

// Reply answers a message without pinging anyone.
func (r *Responder) Reply(ctx context.Context, channelID, messageID, content string) error {
	msg := &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}
	if messageID != "" {
		msg.Reference = &discordgo.MessageReference{MessageID: messageID, ChannelID: channelID}
	}
	if _, err := r.s.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("reply failed: %w", err)
	}
	return nil
}

// ReplyEmbed sends embed into the channel.
func (r *Responder) ReplyEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	if embed.Color == 0 {
		embed.Color = EmbedColor
	}
	if _, err := r.s.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send embed failed: %w", err)
	}
	return nil
}

func (r *Responder) React(ctx context.Context, channelID, messageID, emoji string) error {
	if err := r.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("react failed: %w", err)
	}
	return nil
}

// DirectMessage sends content to the user's DM channel.
func (r *Responder) DirectMessage(ctx context.Context, userID, content string) error {
	ch, err := r.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel failed: %w", err)
	}
	if _, err := r.s.ChannelMessageSend(ch.ID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("dm failed: %w", err)
	}
	return nil
}

// Warn sends text to the user as a red embed in DMs.
func (r *Responder) Warn(ctx context.Context, userID, text string) error {
	ch, err := r.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm channel failed: %w", err)
	}
	embed := &discordgo.MessageEmbed{Description: text, Color: WarnColor}
	if _, err := r.s.ChannelMessageSendEmbed(ch.ID, embed, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("warn failed: %w", err)
	}
	return nil
}

func (r *Responder) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	if err := r.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message failed: %w", err)
	}
	return nil
}
