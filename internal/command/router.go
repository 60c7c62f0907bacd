package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/config"
	"github.com/keshon/kurumi/internal/storage"
	"github.com/keshon/kurumi/pkg/cmd"
	"github.com/keshon/kurumi/pkg/util"
)

var tracer = otel.Tracer("kurumi/command")

// Outcome is what happened to a routed message.
type Outcome int

const (
	OutcomeIgnored   Outcome = iota // not a command message
	OutcomeNotFound                 // prefixed, but no such command
	OutcomeDisabled                 // command disabled in config
	OutcomeDenied                   // owner or permission gate refused
	OutcomeCooldown                 // invoked again too soon
	OutcomeSucceeded                // Run returned nil
	OutcomeFailed                   // Run or the gate's upstream call failed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeDisabled:
		return "disabled"
	case OutcomeDenied:
		return "denied"
	case OutcomeCooldown:
		return "cooldown"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Router turns messages into command invocations. It holds no per-message
// state; the registry and config are read-only after boot.
type Router struct {
	reg       *cmd.Registry
	cfg       *config.Config
	store     *storage.Storage
	cooldowns *Cooldowns
	log       zerolog.Logger
	now       func() time.Time
}

type RouterOption func(*Router)

func WithStorage(s *storage.Storage) RouterOption {
	return func(r *Router) { r.store = s }
}

func WithRouterLogger(l zerolog.Logger) RouterOption {
	return func(r *Router) { r.log = l.With().Str("component", "router").Logger() }
}

// WithClock replaces time.Now, for cooldown tests.
func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

func NewRouter(reg *cmd.Registry, cfg *config.Config, opts ...RouterOption) *Router {
	r := &Router{
		reg:       reg,
		cfg:       cfg,
		cooldowns: NewCooldowns(cfg.CooldownInterval()),
		log:       zerolog.Nop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Cooldowns exposes the cooldown tracker so a background job can sweep it.
func (r *Router) Cooldowns() *Cooldowns { return r.cooldowns }

// Registry returns the command registry the router resolves against.
func (r *Router) Registry() *cmd.Registry { return r.reg }

// Route handles msg and reports the outcome. Errors are logged and counted,
// never returned.
func (r *Router) Route(ctx context.Context, client bot.Client, msg *discordgo.Message) Outcome {
	o, _ := r.Handle(ctx, client, msg)
	return o
}

// Handle is Route that also returns the classified error, for callers and
// tests that want to inspect it.
func (r *Router) Handle(ctx context.Context, client bot.Client, msg *discordgo.Message) (Outcome, error) {
	if msg == nil || msg.Author == nil || msg.Author.Bot {
		return OutcomeIgnored, nil
	}

	opts := ParseOptions{Prefix: r.cfg.Prefix, CaseInsensitive: r.cfg.Commands.CaseInsensitive}
	if r.cfg.RespondToMentions {
		opts.SelfID = client.SelfID()
	}
	token, args, ok := Parse(msg.Content, opts)
	if !ok {
		return OutcomeIgnored, nil
	}

	c, found := r.reg.Resolve(token)
	// with case folding off only the exact lower-case form matches
	if found && !opts.CaseInsensitive && token != strings.ToLower(token) {
		found = false
	}
	if !found {
		recordRoute("unknown", OutcomeNotFound)
		r.log.Debug().Str("token", token).Str("user", msg.Author.ID).Msg("unknown command")
		return OutcomeNotFound, cmd.ErrUnknownCommand
	}
	name, _ := r.reg.Canonical(token)

	if r.cfg.IsDisabled(name) {
		recordRoute(name, OutcomeDisabled)
		r.log.Debug().Str("command", name).Msg("command disabled")
		return OutcomeDisabled, nil
	}

	mc := r.newContext(client, msg, name, token, args)

	if err := r.authorize(ctx, client, c, name, msg); err != nil {
		if cmd.IsKind(err, cmd.KindMissingPermissions) {
			r.deny(ctx, c, mc, err)
			return r.finish(mc, OutcomeDenied, err)
		}
		return r.finish(mc, OutcomeFailed, err)
	}

	if !r.cfg.IsOwner(msg.Author.ID) {
		if wait, ok := r.cooldowns.Allow(msg.Author.ID, name, mc.Received); !ok {
			err := cmd.ErrRateLimited(name, wait.Milliseconds())
			r.deny(ctx, c, mc, err)
			return r.finish(mc, OutcomeCooldown, err)
		}
	}

	inv := &cmd.Invocation{Token: token, Args: args, Data: mc}
	if err := r.execute(ctx, c, mc, inv); err != nil {
		return r.finish(mc, OutcomeFailed, err)
	}
	return r.finish(mc, OutcomeSucceeded, nil)
}

func (r *Router) newContext(client bot.Client, msg *discordgo.Message, name, token string, args []string) *MessageContext {
	id := ulid.Make()
	return &MessageContext{
		ID:        id,
		Message:   msg,
		Command:   name,
		InvokedAs: token,
		Args:      args,
		Received:  r.now(),
		Config:    r.cfg,
		Client:    client,
		Storage:   r.store,
		Registry:  r.reg,
		Logger: r.log.With().
			Str("invocation", id.String()).
			Str("command", name).
			Str("user", msg.Author.ID).
			Str("guild", msg.GuildID).
			Logger(),
	}
}

// execute runs c under the command timeout. When the deadline passes the
// router stops waiting; the command goroutine sees a cancelled context.
func (r *Router) execute(ctx context.Context, c cmd.Command, mc *MessageContext, inv *cmd.Invocation) (err error) {
	ctx, span := tracer.Start(ctx, "command.execute",
		trace.WithAttributes(
			attribute.String("command.name", mc.Command),
			attribute.String("command.invoked_as", mc.InvokedAs),
			attribute.String("invocation.id", mc.ID.String()),
			attribute.String("guild.id", mc.GuildID()),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx, cancel := context.WithTimeout(ctx, r.cfg.Commands.Timeout)
	defer cancel()

	start := time.Now()
	defer func() { recordDuration(mc.Command, time.Since(start)) }()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if rec := recover(); rec != nil {
				done <- cmd.ExecutionError(mc.Command, fmt.Errorf("panic: %v", rec))
			}
		}()
		done <- c.Run(ctx, inv)
	}()

	select {
	case err := <-done:
		return classify(mc.Command, err)
	case <-ctx.Done():
		return cmd.ErrTimeout(mc.Command, ctx.Err())
	}
}

// classify makes sure every failure carries a command error code.
func classify(name string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := oops.AsOops(err); ok {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return cmd.ErrTimeout(name, err)
	}
	return cmd.ExecutionError(name, err)
}

func (r *Router) deny(ctx context.Context, c cmd.Command, mc *MessageContext, err error) {
	h, ok := cmd.As[DenialHandler](c)
	if !ok {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			mc.Logger.Error().Interface("panic", rec).Msg("denial hook panicked")
		}
	}()
	h.OnDenied(ctx, mc, err)
}

func (r *Router) finish(mc *MessageContext, o Outcome, err error) (Outcome, error) {
	recordRoute(mc.Command, o)

	if err == nil {
		mc.Logger.Debug().Str("outcome", o.String()).Msg("command completed")
		return o, nil
	}

	kind := cmd.KindOf(err)
	CommandFailures.WithLabelValues(mc.Command, string(kind)).Inc()

	ev := mc.Logger.Warn()
	if kind == cmd.KindExecution || kind == cmd.KindUpstream {
		ev = mc.Logger.Error()
	}
	ev.Err(err).
		Str("outcome", o.String()).
		Str("kind", string(kind)).
		Str("content", util.Truncate(mc.Message.Content, 100)).
		Msg("command failed")
	return o, err
}
