// Package command routes prefixed chat messages to registered commands.
package command

import (
	"context"

	"github.com/keshon/kurumi/internal/config"
	"github.com/keshon/kurumi/pkg/cmd"
)

// DiscordMeta is implemented by commands that carry Discord-specific
// metadata. It is looked up through middleware wrappers with cmd.As.
type DiscordMeta interface {
	Category() string
	// UserPermissions is the discordgo permission bit set the invoking
	// member must hold; 0 means none.
	UserPermissions() int64
	OwnerOnly() bool
}

// DenialHandler is implemented by commands that want to tell the user why
// an invocation was refused by the permission gate or a cooldown.
type DenialHandler interface {
	OnDenied(ctx context.Context, mc *MessageContext, err error)
}

// CategoryOf returns the command's category, or the default one.
func CategoryOf(c cmd.Command) string {
	if m, ok := cmd.As[DiscordMeta](c); ok && m.Category() != "" {
		return m.Category()
	}
	return config.DefaultCategory
}

// PermissionsOf returns the permission bits a command requires.
func PermissionsOf(c cmd.Command) int64 {
	if m, ok := cmd.As[DiscordMeta](c); ok {
		return m.UserPermissions()
	}
	return 0
}

// IsOwnerOnly reports whether only configured owners may run c.
func IsOwnerOnly(c cmd.Command) bool {
	if m, ok := cmd.As[DiscordMeta](c); ok {
		return m.OwnerOnly()
	}
	return false
}

// ReplyOnDenied is an embeddable DenialHandler that answers with an error
// embed built from the error's user message.
type ReplyOnDenied struct{}

func (ReplyOnDenied) OnDenied(ctx context.Context, mc *MessageContext, err error) {
	if _, replyErr := mc.ReplyError(ctx, "Not allowed", cmd.UserMessage(err)); replyErr != nil {
		mc.Logger.Debug().Err(replyErr).Msg("failed to send denial reply")
	}
}
