package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/keshon/kurumi/internal/bot"
	"github.com/keshon/kurumi/internal/bot/bottest"
	"github.com/keshon/kurumi/pkg/util"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type messageHandler struct {
	Base
	name  string
	calls atomic.Int32
	fn    func(e *discordgo.MessageCreate) error
}

func (h *messageHandler) EventType() Type { return MessageCreate }
func (h *messageHandler) Name() string    { return h.name }

func (h *messageHandler) OnMessage(_ context.Context, _ bot.Client, e *discordgo.MessageCreate) error {
	h.calls.Add(1)
	if h.fn != nil {
		return h.fn(e)
	}
	return nil
}

type readyHandler struct {
	Base
	calls atomic.Int32
}

func (h *readyHandler) EventType() Type { return Ready }

func (h *readyHandler) OnReady(context.Context, bot.Client, *discordgo.Ready) error {
	h.calls.Add(1)
	return nil
}

type badHandler struct{ Base }

func (badHandler) EventType() Type { return "typing_start" }

func newMessage(content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "1",
		ChannelID: "c",
		Content:   content,
		Author:    &discordgo.User{ID: "42"},
	}}
}

func newDispatcher(t *testing.T, hs ...Handler) *Dispatcher {
	t.Helper()
	reg := NewRegistry()
	for _, h := range hs {
		require.NoError(t, reg.Register(h))
	}
	return NewDispatcher(reg, util.NewPool(4), WithClient(bottest.New("self")))
}

func TestDispatch_PanickingHandlerIsIsolated(t *testing.T) {
	panicky := &messageHandler{name: "panicky", fn: func(*discordgo.MessageCreate) error { panic("boom") }}
	healthy := &messageHandler{name: "healthy"}
	d := newDispatcher(t, panicky, healthy)

	require.NoError(t, d.Dispatch(context.Background(), MessageCreate, newMessage("hi")))
	d.Wait()

	assert.EqualValues(t, 1, panicky.calls.Load())
	assert.EqualValues(t, 1, healthy.calls.Load())
}

func TestDispatch_HandlerErrorDoesNotStopOthers(t *testing.T) {
	failing := &messageHandler{name: "failing", fn: func(*discordgo.MessageCreate) error { return errors.New("nope") }}
	ok := &messageHandler{name: "ok"}
	d := newDispatcher(t, failing, ok)

	require.NoError(t, d.Dispatch(context.Background(), MessageCreate, newMessage("hi")))
	d.Wait()

	assert.EqualValues(t, 1, failing.calls.Load())
	assert.EqualValues(t, 1, ok.calls.Load())
}

func TestDispatch_NoHandlersIsNoop(t *testing.T) {
	d := newDispatcher(t)
	assert.NoError(t, d.Dispatch(context.Background(), MessageCreate, newMessage("hi")))
	assert.NoError(t, d.Dispatch(context.Background(), Ready, &discordgo.Ready{}))
	d.Wait()
}

func TestDispatch_OnlyMatchingTypeRuns(t *testing.T) {
	msg := &messageHandler{name: "msg"}
	ready := &readyHandler{}
	d := newDispatcher(t, msg, ready)

	d.Deliver(Ready, &discordgo.Ready{SessionID: "s"})
	d.Wait()

	assert.EqualValues(t, 0, msg.calls.Load())
	assert.EqualValues(t, 1, ready.calls.Load())
}

func TestDispatch_MismatchedPayloadDropped(t *testing.T) {
	msg := &messageHandler{name: "msg"}
	d := newDispatcher(t, msg)

	err := d.Dispatch(context.Background(), MessageCreate, &discordgo.Ready{})
	assert.Error(t, err)
	assert.Error(t, d.Dispatch(context.Background(), MessageCreate, &discordgo.MessageCreate{}))
	d.Wait()

	assert.EqualValues(t, 0, msg.calls.Load())
}

func TestDispatch_HandlersSeeIndependentPayloads(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	record := func(name string) func(e *discordgo.MessageCreate) error {
		return func(e *discordgo.MessageCreate) error {
			mu.Lock()
			seen[name] = e.Content
			mu.Unlock()
			e.Content = "mutated by " + name
			return nil
		}
	}
	a := &messageHandler{name: "a", fn: record("a")}
	b := &messageHandler{name: "b", fn: record("b")}
	d := newDispatcher(t, a, b)

	original := newMessage("original")
	require.NoError(t, d.Dispatch(context.Background(), MessageCreate, original))
	d.Wait()

	assert.Equal(t, map[string]string{"a": "original", "b": "original"}, seen)
	assert.Equal(t, "original", original.Content)
}

func TestDispatch_DoesNotWaitForHandlers(t *testing.T) {
	release := make(chan struct{})
	slow := &messageHandler{name: "slow", fn: func(*discordgo.MessageCreate) error {
		<-release
		return nil
	}}
	d := newDispatcher(t, slow)

	done := make(chan struct{})
	go func() {
		_ = d.Dispatch(context.Background(), MessageCreate, newMessage("x"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Dispatch blocked on a running handler")
	}
	close(release)
	d.Wait()
}

func TestClose_DrainsAndRejects(t *testing.T) {
	release := make(chan struct{})
	slow := &messageHandler{name: "slow", fn: func(*discordgo.MessageCreate) error {
		<-release
		return nil
	}}
	d := newDispatcher(t, slow)
	require.NoError(t, d.Dispatch(context.Background(), MessageCreate, newMessage("x")))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, d.Close(ctx))

	assert.Error(t, d.Dispatch(context.Background(), MessageCreate, newMessage("y")))

	close(release)
	require.NoError(t, d.Close(context.Background()))
	assert.EqualValues(t, 1, slow.calls.Load())
}

func TestDispatch_StartsHandlersInRegistrationOrderOnBusyPool(t *testing.T) {
	pool := util.NewPool(1)
	release := make(chan struct{})
	pool.Go(func() { <-release })
	require.Eventually(t, func() bool { return pool.Busy() == 1 }, time.Second, time.Millisecond)

	var mu sync.Mutex
	var order []string
	reg := NewRegistry()
	for i := range 8 {
		name := fmt.Sprintf("h%d", i)
		require.NoError(t, reg.Register(&messageHandler{name: name, fn: func(*discordgo.MessageCreate) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}}))
	}
	d := NewDispatcher(reg, pool, WithClient(bottest.New("self")))

	require.NoError(t, d.Dispatch(context.Background(), MessageCreate, newMessage("x")))
	close(release)
	d.Wait()

	assert.Equal(t, []string{"h0", "h1", "h2", "h3", "h4", "h5", "h6", "h7"}, order)
}

func TestClose_RacingDispatchesAreAllDrained(t *testing.T) {
	counter := &messageHandler{name: "counter"}
	d := newDispatcher(t, counter)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			for range 50 {
				if d.Dispatch(context.Background(), MessageCreate, newMessage("x")) == nil {
					accepted.Add(1)
				}
			}
		}()
	}

	close(start)
	require.NoError(t, d.Close(context.Background()))
	wg.Wait()

	assert.Equal(t, accepted.Load(), counter.calls.Load())
	assert.Error(t, d.Dispatch(context.Background(), MessageCreate, newMessage("late")))
}

func TestRegistry_RejectsUnknownType(t *testing.T) {
	reg := NewRegistry()
	assert.Error(t, reg.Register(badHandler{}))
	assert.Error(t, reg.Register(nil))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_PreservesOrder(t *testing.T) {
	reg := NewRegistry()
	a := &messageHandler{name: "a"}
	b := &messageHandler{name: "b"}
	reg.MustRegister(a, b, &readyHandler{})

	hs := reg.Handlers(MessageCreate)
	require.Len(t, hs, 2)
	assert.Equal(t, "a", HandlerName(hs[0]))
	assert.Equal(t, "b", HandlerName(hs[1]))
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, "*event.readyHandler", HandlerName(reg.Handlers(Ready)[0]))
}
