// Package bot defines the outbound surface handlers and commands use to talk
// back to the platform.
package bot

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Client is implemented by the gateway adapter. Errors returned by it carry
// the UPSTREAM_PROTOCOL_ERROR code.
type Client interface {
	// SelfID is the bot user's id, empty until the gateway is ready.
	SelfID() string
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	EditMessage(ctx context.Context, channelID, messageID string, edit *discordgo.MessageEdit) (*discordgo.Message, error)
	// MemberPermissions returns the effective permission bits of userID in
	// channelID of guildID.
	MemberPermissions(ctx context.Context, guildID, channelID, userID string) (int64, error)
	HeartbeatLatency() time.Duration
}
