package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCooldowns_AllowAndSweep(t *testing.T) {
	c := NewCooldowns(2 * time.Second)
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	_, ok := c.Allow("u", "ping", t0)
	assert.True(t, ok)

	wait, ok := c.Allow("u", "ping", t0.Add(500*time.Millisecond))
	assert.False(t, ok)
	assert.InDelta(t, float64(1500*time.Millisecond), float64(wait), float64(10*time.Millisecond))

	_, ok = c.Allow("u", "help", t0)
	assert.True(t, ok)

	assert.Equal(t, 0, c.Sweep(t0.Add(time.Second)))
	assert.Equal(t, 2, c.Sweep(t0.Add(2*time.Second)))
	assert.Equal(t, 0, c.Len())
}

func TestCooldowns_Disabled(t *testing.T) {
	c := NewCooldowns(0)
	for i := 0; i < 3; i++ {
		_, ok := c.Allow("u", "ping", time.Now())
		assert.True(t, ok)
	}
	assert.Equal(t, 0, c.Len())

	var nilTracker *Cooldowns
	_, ok := nilTracker.Allow("u", "ping", time.Now())
	assert.True(t, ok)
}
