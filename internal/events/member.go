package events

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/event"
)

// MemberJoinHandler logs members joining a guild.
type MemberJoinHandler struct {
	event.Base
	Log zerolog.Logger
}

func (h *MemberJoinHandler) EventType() event.Type { return event.MemberJoin }
func (h *MemberJoinHandler) Name() string          { return "member-join-logger" }

func (h *MemberJoinHandler) OnMemberJoin(_ context.Context, _ bot.Client, e *discordgo.GuildMemberAdd) error {
	ev := h.Log.Info().Str("guild", e.GuildID)
	if e.User != nil {
		ev = ev.Str("user_id", e.User.ID).Str("user", e.User.Username).Bool("bot", e.User.Bot)
	}
	ev.Msg("member joined")
	return nil
}
