// Package events holds the built-in gateway event handlers.
package events

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/event"
)

// ReadyHandler logs the bot identity once the gateway session is ready.
type ReadyHandler struct {
	event.Base
	Prefix string
	Log    zerolog.Logger
}

func (h *ReadyHandler) EventType() event.Type { return event.Ready }
func (h *ReadyHandler) Name() string          { return "ready-logger" }

func (h *ReadyHandler) OnReady(_ context.Context, _ bot.Client, e *discordgo.Ready) error {
	username := "unknown"
	if e.User != nil {
		username = e.User.Username
	}
	h.Log.Info().
		Str("user", username).
		Int("guilds", len(e.Guilds)).
		Str("prefix", h.Prefix).
		Msg("connected and ready")
	return nil
}
