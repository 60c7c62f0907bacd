package jobmgr

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) report(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, s)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}

func TestManager_StartAndStop(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)

	require.NoError(t, m.Start(context.Background(), "wait", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	assert.Equal(t, []string{"wait"}, m.List())
	assert.Equal(t, "Running jobs: wait", m.Status())

	err := m.Start(context.Background(), "wait", func(context.Context) error { return nil })
	assert.Error(t, err)

	require.NoError(t, m.Stop("wait"))
	assert.Empty(t, m.List())
	assert.Equal(t, "No jobs are running.", m.Status())
	assert.Contains(t, rec.all(), "done:wait")

	assert.Error(t, m.Stop("wait"))
}

func TestManager_ReportsErrors(t *testing.T) {
	rec := &recorder{}
	m := NewManager(rec.report)

	require.NoError(t, m.Start(context.Background(), "fail", func(context.Context) error {
		return errors.New("boom")
	}))
	m.StopAll()

	assert.Contains(t, rec.all(), "error:fail:boom")
}

func TestManager_Every(t *testing.T) {
	m := NewManager(nil)
	var ticks atomic.Int32

	require.NoError(t, m.Every(context.Background(), "tick", 2*time.Millisecond, func(context.Context) error {
		ticks.Add(1)
		return nil
	}))

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)
	m.StopAll()
	assert.Empty(t, m.List())
}

func TestManager_EveryRejectsBadInterval(t *testing.T) {
	m := NewManager(nil)
	assert.Error(t, m.Every(context.Background(), "bad", 0, func(context.Context) error { return nil }))
}

func TestManager_ParentCancellation(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, m.Start(ctx, "child", func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	}))
	cancel()

	assert.Eventually(t, func() bool { return len(m.List()) == 0 }, time.Second, time.Millisecond)
	m.StopAll()
}
