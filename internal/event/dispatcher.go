package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/pkg/util"
)

// Dispatcher runs the handlers registered for an event on a shared pool.
// Each handler gets its own copy of the payload and a panic boundary, so one
// failing handler never affects its siblings or the gateway reader.
type Dispatcher struct {
	reg    *Registry
	pool   *util.Pool
	client bot.Client
	log    zerolog.Logger
	base   context.Context

	// mu orders submissions against Close, so no task is added to the pool
	// once Close has started waiting.
	mu     sync.RWMutex
	closed bool
}

type Option func(*Dispatcher)

func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = l.With().Str("component", "dispatcher").Logger() }
}

// WithClient sets the client handed to every handler callback.
func WithClient(c bot.Client) Option {
	return func(d *Dispatcher) { d.client = c }
}

// WithBaseContext sets the context Deliver dispatches under.
func WithBaseContext(ctx context.Context) Option {
	return func(d *Dispatcher) { d.base = ctx }
}

func NewDispatcher(reg *Registry, pool *util.Pool, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		reg:  reg,
		pool: pool,
		log:  zerolog.Nop(),
		base: context.Background(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// SetClient replaces the client. Call it before the gateway starts delivering.
func (d *Dispatcher) SetClient(c bot.Client) { d.client = c }

// Deliver is the gateway callback form of Dispatch.
func (d *Dispatcher) Deliver(t Type, payload any) {
	_ = d.Dispatch(d.base, t, payload)
}

// Dispatch starts one pool task per handler registered for t, in
// registration order, and returns without waiting for them. A payload whose
// type does not match t is logged and dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, t Type, payload any) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return fmt.Errorf("dispatcher closed")
	}
	handlers := d.reg.Handlers(t)
	if len(handlers) == 0 {
		return nil
	}
	if err := checkPayload(t, payload); err != nil {
		EventsDropped.WithLabelValues(string(t)).Inc()
		d.log.Warn().Err(err).Str("event", string(t)).Msg("dropping event")
		return err
	}

	tasks := make([]func(), 0, len(handlers))
	for _, h := range handlers {
		p := clonePayload(payload)
		tasks = append(tasks, func() { d.run(ctx, t, h, p) })
	}
	d.pool.GoOrdered(tasks...)
	return nil
}

// Wait blocks until every started handler has returned.
func (d *Dispatcher) Wait() {
	d.pool.Wait()
}

// Close stops accepting events and waits for in-flight handlers or ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return d.pool.WaitContext(ctx)
}

func (d *Dispatcher) run(ctx context.Context, t Type, h Handler, payload any) {
	name := HandlerName(h)
	defer func() {
		if r := recover(); r != nil {
			HandlerRuns.WithLabelValues(string(t), name, StatusPanic).Inc()
			d.log.Error().
				Str("event", string(t)).
				Str("handler", name).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("handler panicked")
		}
	}()

	if err := invoke(ctx, d.client, h, payload); err != nil {
		HandlerRuns.WithLabelValues(string(t), name, StatusError).Inc()
		d.log.Warn().Err(err).Str("event", string(t)).Str("handler", name).Msg("handler failed")
		return
	}
	HandlerRuns.WithLabelValues(string(t), name, StatusOK).Inc()
}

func invoke(ctx context.Context, c bot.Client, h Handler, payload any) error {
	switch p := payload.(type) {
	case *discordgo.Ready:
		return h.OnReady(ctx, c, p)
	case *discordgo.MessageCreate:
		return h.OnMessage(ctx, c, p)
	case *discordgo.MessageReactionAdd:
		return h.OnReactionAdd(ctx, c, p)
	case *discordgo.GuildMemberAdd:
		return h.OnMemberJoin(ctx, c, p)
	case *discordgo.InteractionCreate:
		return h.OnInteraction(ctx, c, p)
	}
	return fmt.Errorf("unsupported payload %T", payload)
}

func checkPayload(t Type, payload any) error {
	ok := false
	switch p := payload.(type) {
	case *discordgo.Ready:
		ok = t == Ready && p != nil
	case *discordgo.MessageCreate:
		ok = t == MessageCreate && p != nil && p.Message != nil
	case *discordgo.MessageReactionAdd:
		ok = t == ReactionAdd && p != nil && p.MessageReaction != nil
	case *discordgo.GuildMemberAdd:
		ok = t == MemberJoin && p != nil && p.Member != nil
	case *discordgo.InteractionCreate:
		ok = t == Interaction && p != nil && p.Interaction != nil
	}
	if !ok {
		return fmt.Errorf("payload %T does not match event %q", payload, t)
	}
	return nil
}

// clonePayload copies the event struct and the struct it embeds, so a
// handler reassigning fields does not leak into another handler's view.
// Slices and nested pointers are still shared and must be treated as
// read-only.
func clonePayload(payload any) any {
	switch p := payload.(type) {
	case *discordgo.Ready:
		c := *p
		return &c
	case *discordgo.MessageCreate:
		m := *p.Message
		return &discordgo.MessageCreate{Message: &m}
	case *discordgo.MessageReactionAdd:
		r := *p.MessageReaction
		c := *p
		c.MessageReaction = &r
		return &c
	case *discordgo.GuildMemberAdd:
		m := *p.Member
		return &discordgo.GuildMemberAdd{Member: &m}
	case *discordgo.InteractionCreate:
		i := *p.Interaction
		return &discordgo.InteractionCreate{Interaction: &i}
	}
	return payload
}
