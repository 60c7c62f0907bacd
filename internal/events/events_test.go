package events

import (
	"bytes"
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keshon/kurumi/internal/bot/bottest"
	"github.com/keshon/kurumi/internal/command"
	"github.com/keshon/kurumi/internal/command/general"
	"github.com/keshon/kurumi/internal/config"
	"github.com/keshon/kurumi/internal/event"
	"github.com/keshon/kurumi/pkg/cmd"
	"github.com/keshon/kurumi/pkg/util"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestReadyHandler_Logs(t *testing.T) {
	var buf bytes.Buffer
	h := &ReadyHandler{Prefix: "!", Log: zerolog.New(&buf)}

	require.NoError(t, h.OnReady(context.Background(), bottest.New("1"), &discordgo.Ready{
		User:   &discordgo.User{Username: "kurumi"},
		Guilds: []*discordgo.Guild{{ID: "a"}, {ID: "b"}},
	}))

	assert.Contains(t, buf.String(), `"user":"kurumi"`)
	assert.Contains(t, buf.String(), `"guilds":2`)
	assert.Contains(t, buf.String(), `"prefix":"!"`)
}

func TestMemberJoinHandler_Logs(t *testing.T) {
	var buf bytes.Buffer
	h := &MemberJoinHandler{Log: zerolog.New(&buf)}

	require.NoError(t, h.OnMemberJoin(context.Background(), bottest.New("1"), &discordgo.GuildMemberAdd{
		Member: &discordgo.Member{GuildID: "g1", User: &discordgo.User{ID: "7", Username: "alice"}},
	}))

	assert.Contains(t, buf.String(), `"guild":"g1"`)
	assert.Contains(t, buf.String(), `"user":"alice"`)
}

func TestMessageHandler_RoutesThroughDispatcher(t *testing.T) {
	cfg := config.Default()
	cfg.Commands.Cooldown = 0
	reg := cmd.NewRegistry()
	require.NoError(t, general.Register(reg))

	client := bottest.New("self")
	events := event.NewRegistry()
	events.MustRegister(
		&MessageHandler{Router: command.NewRouter(reg, cfg)},
		&ReadyHandler{Prefix: cfg.Prefix, Log: zerolog.Nop()},
		&MemberJoinHandler{Log: zerolog.Nop()},
	)
	d := event.NewDispatcher(events, util.NewPool(2), event.WithClient(client))

	d.Deliver(event.MessageCreate, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m", ChannelID: "c", GuildID: "g", Content: "!ping",
		Author: &discordgo.User{ID: "7"},
	}})
	d.Deliver(event.MessageCreate, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID: "m2", ChannelID: "c", GuildID: "g", Content: "just chatting",
		Author: &discordgo.User{ID: "7"},
	}})
	require.NoError(t, d.Close(context.Background()))

	require.Len(t, client.Sent(), 1)
	assert.Equal(t, "Pinging...", client.Sent()[0].Content)
	assert.Len(t, client.Edits(), 1)
}
