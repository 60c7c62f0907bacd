package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/pkg/cmd"
)

var _ bot.Client = (*Bot)(nil)

func (b *Bot) SelfID() string {
	id, _ := b.selfID.Load().(string)
	return id
}

func (b *Bot) HeartbeatLatency() time.Duration {
	return b.session.HeartbeatLatency()
}

func (b *Bot) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	m, err := b.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	if err != nil {
		return nil, cmd.UpstreamError("send message", err)
	}
	return m, nil
}

func (b *Bot) EditMessage(ctx context.Context, channelID, messageID string, edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	edit.Channel = channelID
	edit.ID = messageID
	m, err := b.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	if err != nil {
		return nil, cmd.UpstreamError("edit message", err)
	}
	return m, nil
}

// MemberPermissions resolves effective channel permissions, cached per
// guild, channel and user for the configured TTL.
func (b *Bot) MemberPermissions(ctx context.Context, guildID, channelID, userID string) (int64, error) {
	key := guildID + "/" + channelID + "/" + userID
	if perms, ok := b.perms.Get(key); ok {
		return perms, nil
	}

	perms, err := b.session.UserChannelPermissions(userID, channelID, discordgo.WithContext(ctx))
	if err != nil {
		return 0, cmd.UpstreamError("member permissions", err)
	}
	b.perms.Add(key, perms)
	return perms, nil
}

// CachedPermissions is the number of live permission cache entries.
func (b *Bot) CachedPermissions() int {
	return b.perms.Len()
}
