package middleware

import (
	"context"
	"strings"

	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/internal/storage"
	"github.com/keshon/kurumi/pkg/cmd"
)

// WithCommandLogger records every guild invocation in the command history.
// A storage failure is logged and never fails the command.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			err := c.Run(ctx, inv)

			mc, ok := inv.Data.(*command.MessageContext)
			if !ok || mc.Storage == nil || mc.IsDM() {
				return err
			}

			outcome := "ok"
			if err != nil {
				outcome = strings.ToLower(string(cmd.KindOf(err)))
			}
			author := mc.Author()
			rec := storage.CommandHistoryRecord{
				ChannelID: mc.ChannelID(),
				UserID:    author.ID,
				Username:  author.Username,
				Command:   mc.Command,
				Param:     strings.Join(mc.Args, " "),
				Outcome:   outcome,
				Datetime:  mc.Received,
			}
			if e := mc.Storage.AppendCommandToHistory(mc.GuildID(), rec); e != nil {
				mc.Logger.Warn().Err(e).Msg("failed to record command history")
			}
			return err
		})
	}
}
