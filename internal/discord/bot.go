// Package discord adapts a discordgo session to the event dispatcher and
// implements bot.Client on top of it.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/keshon/kurumi/internal/event"
	"github.com/keshon/kurumi/pkg/retrylimit"
)

// session is the part of *discordgo.Session the bot uses.
type session interface {
	Open() error
	Close() error
	AddHandler(handler interface{}) func()
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	UserChannelPermissions(userID, channelID string, fetchOptions ...discordgo.RequestOption) (int64, error)
	HeartbeatLatency() time.Duration
}

// Sink receives gateway events.
type Sink interface {
	Deliver(t event.Type, payload any)
}

const DefaultIntents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMessageReactions |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

type Config struct {
	Token   string
	Intents discordgo.Intent

	ConnectRetry retrylimit.RetryConfig

	PermissionCacheSize int
	PermissionCacheTTL  time.Duration

	Logger zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.Intents == 0 {
		c.Intents = DefaultIntents
	}
	if c.ConnectRetry.MaxAttempts == 0 {
		c.ConnectRetry = retrylimit.DefaultRetryConfig()
	}
	if c.PermissionCacheSize <= 0 {
		c.PermissionCacheSize = 1024
	}
	if c.PermissionCacheTTL <= 0 {
		c.PermissionCacheTTL = 30 * time.Second
	}
}

// Bot owns the gateway session. It forwards events to a Sink and serves as
// the bot.Client handed to handlers.
type Bot struct {
	cfg     Config
	session session
	sink    Sink
	log     zerolog.Logger

	selfID atomic.Value // string
	perms  *expirable.LRU[string, int64]

	mu       sync.Mutex
	removers []func()
	open     bool
}

// New creates a Bot with a real discordgo session. Call SetSink before Open.
func New(cfg Config) (*Bot, error) {
	if cfg.Token == "" {
		return nil, errors.New("discord token is required")
	}
	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	cfg.applyDefaults()
	dg.Identify.Intents = cfg.Intents
	return newWithSession(cfg, dg), nil
}

func newWithSession(cfg Config, s session) *Bot {
	cfg.applyDefaults()
	b := &Bot{
		cfg:     cfg,
		session: s,
		log:     cfg.Logger.With().Str("component", "gateway").Logger(),
		perms:   expirable.NewLRU[string, int64](cfg.PermissionCacheSize, nil, cfg.PermissionCacheTTL),
	}
	b.selfID.Store("")
	return b
}

// SetSink sets where gateway events go.
func (b *Bot) SetSink(s Sink) { b.sink = s }

// Open registers the gateway handlers and connects, retrying with backoff.
// An authentication failure is not retried.
func (b *Bot) Open(ctx context.Context) error {
	if b.sink == nil {
		return errors.New("discord: no event sink configured")
	}

	b.mu.Lock()
	if b.open {
		b.mu.Unlock()
		return errors.New("discord: session already open")
	}
	b.removers = append(b.removers,
		b.session.AddHandler(b.onReady),
		b.session.AddHandler(b.onMessageCreate),
		b.session.AddHandler(b.onMessageReactionAdd),
		b.session.AddHandler(b.onGuildMemberAdd),
		b.session.AddHandler(b.onInteractionCreate),
	)
	b.mu.Unlock()

	retry := b.cfg.ConnectRetry
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		b.log.Warn().Err(err).Int("attempt", attempt).Dur("backoff", delay).Msg("connection failed, retrying")
	}

	err := retrylimit.WithRetryConfig(ctx, func() error {
		err := b.session.Open()
		if isAuthError(err) {
			return retrylimit.Fatal(err)
		}
		return err
	}, retry)
	if err != nil {
		b.removeHandlers()
		return fmt.Errorf("failed to open Discord session: %w", err)
	}

	b.mu.Lock()
	b.open = true
	b.mu.Unlock()
	return nil
}

// Close detaches handlers and closes the session.
func (b *Bot) Close() error {
	b.removeHandlers()

	b.mu.Lock()
	wasOpen := b.open
	b.open = false
	b.mu.Unlock()

	if !wasOpen {
		return nil
	}
	return b.session.Close()
}

func (b *Bot) removeHandlers() {
	b.mu.Lock()
	removers := b.removers
	b.removers = nil
	b.mu.Unlock()
	for _, rm := range removers {
		rm()
	}
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	if r.User != nil {
		b.selfID.Store(r.User.ID)
	}
	b.sink.Deliver(event.Ready, r)
}

func (b *Bot) onMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author != nil && m.Author.ID == b.SelfID() {
		return
	}
	b.sink.Deliver(event.MessageCreate, m)
}

func (b *Bot) onMessageReactionAdd(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.sink.Deliver(event.ReactionAdd, r)
}

func (b *Bot) onGuildMemberAdd(_ *discordgo.Session, m *discordgo.GuildMemberAdd) {
	b.sink.Deliver(event.MemberJoin, m)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, i *discordgo.InteractionCreate) {
	b.sink.Deliver(event.Interaction, i)
}

func isAuthError(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		return restErr.Response.StatusCode == http.StatusUnauthorized
	}
	return false
}
