package general

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/pkg/cmd"
	"github.com/keshon/kurumi/pkg/util"
)

const defaultHistoryEntries = 10

type History struct {
	command.ReplyOnDenied
}

func (c *History) Name() string           { return "history" }
func (c *History) Description() string    { return "Show the latest commands used in this server" }
func (c *History) Aliases() []string      { return []string{"log"} }
func (c *History) Usage() string          { return "history [count]" }
func (c *History) Category() string       { return "🛠️ Maintenance" }
func (c *History) UserPermissions() int64 { return 0 }
func (c *History) OwnerOnly() bool        { return true }

func (c *History) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}
	if mc.Storage == nil {
		_, err := mc.ReplyError(ctx, "History unavailable", "Command history storage is not configured.")
		return err
	}

	n := defaultHistoryEntries
	if len(mc.Args) > 0 {
		v, convErr := strconv.Atoi(mc.Args[0])
		if convErr != nil || v < 1 {
			_, _ = mc.ReplyError(ctx, "Invalid count", "Usage: `"+mc.Config.Prefix+c.Usage()+"`")
			return cmd.ErrInvalidArguments(c.Name(), mc.Config.Prefix+c.Usage())
		}
		n = v
	}

	records, err := mc.Storage.GetCommandsHistory(mc.GuildID())
	if err != nil {
		return cmd.ExecutionError(c.Name(), err)
	}
	if len(records) == 0 {
		_, err := mc.ReplyEmbed(ctx, bot.InfoEmbed("Command history", "No commands recorded yet."))
		return err
	}
	if n < len(records) {
		records = records[len(records)-n:]
	}

	var b strings.Builder
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		line := fmt.Sprintf("<t:%d:R> **%s** `%s%s`", r.Datetime.Unix(), r.Username, mc.Config.Prefix, r.Command)
		if r.Param != "" {
			line += " " + util.Truncate(r.Param, 40)
		}
		if r.Outcome != "" && r.Outcome != "ok" {
			line += " (" + r.Outcome + ")"
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	_, err = mc.ReplyEmbed(ctx, bot.InfoEmbed("Command history", b.String()))
	return err
}
