package command

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/config"
	"github.com/keshon/kurumi/internal/storage"
	"github.com/keshon/kurumi/pkg/cmd"
)

// MessageContext is the per-invocation context of a prefix command. A new
// one is built for every invocation and never shared.
type MessageContext struct {
	ID        ulid.ULID
	Message   *discordgo.Message
	Command   string // canonical name
	InvokedAs string // token as typed, after case folding
	Args      []string
	Received  time.Time

	Config   *config.Config
	Client   bot.Client
	Storage  *storage.Storage // may be nil
	Registry *cmd.Registry
	Logger   zerolog.Logger
}

// FromInvocation extracts the MessageContext a router put in inv.Data.
func FromInvocation(inv *cmd.Invocation) (*MessageContext, error) {
	if inv == nil {
		return nil, fmt.Errorf("nil invocation")
	}
	mc, ok := inv.Data.(*MessageContext)
	if !ok || mc == nil {
		return nil, fmt.Errorf("unexpected invocation data %T", inv.Data)
	}
	return mc, nil
}

func (mc *MessageContext) GuildID() string   { return mc.Message.GuildID }
func (mc *MessageContext) ChannelID() string { return mc.Message.ChannelID }
func (mc *MessageContext) Author() *discordgo.User {
	return mc.Message.Author
}

// IsDM reports whether the message was sent outside a guild.
func (mc *MessageContext) IsDM() bool { return mc.Message.GuildID == "" }

// Send posts msg to the invoking channel as a reply to the invoking message.
func (mc *MessageContext) Send(ctx context.Context, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	if msg.Reference == nil {
		msg.Reference = mc.Message.Reference()
	}
	return mc.Client.SendMessage(ctx, mc.Message.ChannelID, msg)
}

// Reply answers with plain text.
func (mc *MessageContext) Reply(ctx context.Context, content string) (*discordgo.Message, error) {
	return mc.Send(ctx, &discordgo.MessageSend{Content: content})
}

// ReplyEmbed answers with a single embed stamped with the requester.
func (mc *MessageContext) ReplyEmbed(ctx context.Context, e *discordgo.MessageEmbed) (*discordgo.Message, error) {
	return mc.Send(ctx, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{bot.WithRequester(e, mc.Author(), time.Now())},
	})
}

// ReplyError answers with an error embed.
func (mc *MessageContext) ReplyError(ctx context.Context, title, description string) (*discordgo.Message, error) {
	return mc.ReplyEmbed(ctx, bot.ErrorEmbed(title, description))
}

// Edit replaces the content and embeds of a message the bot sent earlier.
func (mc *MessageContext) Edit(ctx context.Context, m *discordgo.Message, content string, embeds ...*discordgo.MessageEmbed) (*discordgo.Message, error) {
	edit := discordgo.NewMessageEdit(m.ChannelID, m.ID).SetContent(content)
	if len(embeds) > 0 {
		edit = edit.SetEmbeds(embeds)
	}
	return mc.Client.EditMessage(ctx, m.ChannelID, m.ID, edit)
}
