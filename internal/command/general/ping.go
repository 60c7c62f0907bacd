package general

import (
	"context"
	"fmt"
	"time"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/pkg/cmd"
)

type Ping struct{}

func (c *Ping) Name() string           { return "ping" }
func (c *Ping) Description() string    { return "Check bot latency" }
func (c *Ping) Aliases() []string      { return []string{"latency"} }
func (c *Ping) Usage() string          { return "ping" }
func (c *Ping) Category() string       { return "🛠️ Maintenance" }
func (c *Ping) UserPermissions() int64 { return 0 }
func (c *Ping) OwnerOnly() bool        { return false }

// Run sends a placeholder, measures the round trip and edits the result in.
func (c *Ping) Run(ctx context.Context, inv *cmd.Invocation) error {
	mc, err := command.FromInvocation(inv)
	if err != nil {
		return err
	}

	start := time.Now()
	sent, err := mc.Reply(ctx, "Pinging...")
	if err != nil {
		return err
	}
	rtt := time.Since(start)

	e := bot.NewEmbed(bot.ColorPing, "🏓 Pong!", "").
		AddField("Round trip", fmt.Sprintf("%dms", rtt.Milliseconds())).
		AddField("Gateway heartbeat", fmt.Sprintf("%dms", mc.Client.HeartbeatLatency().Milliseconds())).
		InlineAllFields()

	_, err = mc.Edit(ctx, sent, "", bot.WithRequester(e.MessageEmbed, mc.Author(), time.Now()))
	return err
}
