package middleware

import (
	"context"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/pkg/cmd"
)

// WithGuildOnly refuses to run a command in direct messages.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if mc, ok := inv.Data.(*command.MessageContext); ok && mc.IsDM() {
				_, err := mc.ReplyEmbed(ctx, bot.WarningEmbed("Guild only", "This command only works in a server."))
				return err
			}
			return c.Run(ctx, inv)
		})
	}
}
