package events

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/internal/event"
)

// MessageHandler feeds message-create events to the command router.
type MessageHandler struct {
	event.Base
	Router *command.Router
}

func (h *MessageHandler) EventType() event.Type { return event.MessageCreate }
func (h *MessageHandler) Name() string          { return "command-router" }

func (h *MessageHandler) OnMessage(ctx context.Context, c bot.Client, e *discordgo.MessageCreate) error {
	h.Router.Route(ctx, c, e.Message)
	return nil
}
