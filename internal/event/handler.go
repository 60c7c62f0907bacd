// Package event fans gateway events out to registered handlers.
package event

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/kurumi/internal/bot"
)

// Type names a gateway event a handler can subscribe to.
type Type string

const (
	Ready         Type = "ready"
	MessageCreate Type = "message_create"
	ReactionAdd   Type = "reaction_add"
	MemberJoin    Type = "guild_member_add"
	Interaction   Type = "interaction_create"
)

// Types lists every supported event type.
var Types = []Type{Ready, MessageCreate, ReactionAdd, MemberJoin, Interaction}

// Valid reports whether t is a supported event type.
func (t Type) Valid() bool {
	for _, k := range Types {
		if k == t {
			return true
		}
	}
	return false
}

// Handler reacts to exactly one event type. Only the callback matching
// EventType is ever invoked; embed Base to get no-ops for the rest.
type Handler interface {
	EventType() Type
	OnReady(ctx context.Context, c bot.Client, e *discordgo.Ready) error
	OnMessage(ctx context.Context, c bot.Client, e *discordgo.MessageCreate) error
	OnReactionAdd(ctx context.Context, c bot.Client, e *discordgo.MessageReactionAdd) error
	OnMemberJoin(ctx context.Context, c bot.Client, e *discordgo.GuildMemberAdd) error
	OnInteraction(ctx context.Context, c bot.Client, e *discordgo.InteractionCreate) error
}

// Named lets a handler report a readable identity in logs and metrics.
type Named interface {
	Name() string
}

// Base implements every Handler callback as a no-op.
type Base struct{}

func (Base) OnReady(context.Context, bot.Client, *discordgo.Ready) error { return nil }

func (Base) OnMessage(context.Context, bot.Client, *discordgo.MessageCreate) error { return nil }

func (Base) OnReactionAdd(context.Context, bot.Client, *discordgo.MessageReactionAdd) error {
	return nil
}

func (Base) OnMemberJoin(context.Context, bot.Client, *discordgo.GuildMemberAdd) error { return nil }

func (Base) OnInteraction(context.Context, bot.Client, *discordgo.InteractionCreate) error {
	return nil
}
