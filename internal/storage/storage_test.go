package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/kurumi/datastore"
)

func newMemStorage(t *testing.T) *Storage {
	t.Helper()
	cfg := datastore.DefaultConfig("store.json")
	cfg.Fs = afero.NewMemMapFs()
	cfg.AutoSaveInterval = 0
	ds, err := datastore.NewWithConfig(cfg)
	require.NoError(t, err)
	s := NewWithStore(ds)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestHistory_EmptyGuild(t *testing.T) {
	s := newMemStorage(t)
	got, err := s.GetCommandsHistory("g1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestHistory_CappedAtLimit(t *testing.T) {
	s := newMemStorage(t)
	now := time.Now()

	for i := 0; i < commandHistoryLimit+5; i++ {
		require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{
			Command:  fmt.Sprintf("cmd%d", i),
			Datetime: now.Add(time.Duration(i) * time.Second),
		}))
	}

	got, err := s.GetCommandsHistory("g1")
	require.NoError(t, err)
	require.Len(t, got, commandHistoryLimit)
	assert.Equal(t, "cmd5", got[0].Command)
	assert.Equal(t, fmt.Sprintf("cmd%d", commandHistoryLimit+4), got[len(got)-1].Command)
}

func TestHistory_PerGuild(t *testing.T) {
	s := newMemStorage(t)
	require.NoError(t, s.AppendCommandToHistory("g1", CommandHistoryRecord{Command: "ping"}))
	require.NoError(t, s.AppendCommandToHistory("g2", CommandHistoryRecord{Command: "help"}))

	g1, err := s.GetCommandsHistory("g1")
	require.NoError(t, err)
	require.Len(t, g1, 1)
	assert.Equal(t, "ping", g1[0].Command)
}
