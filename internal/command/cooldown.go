package command

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Cooldowns limits each user to one invocation of a command per interval.
type Cooldowns struct {
	interval time.Duration

	mu      sync.Mutex
	entries map[string]*cooldownEntry
}

type cooldownEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewCooldowns returns a tracker; a non-positive interval disables it.
func NewCooldowns(interval time.Duration) *Cooldowns {
	return &Cooldowns{interval: interval, entries: make(map[string]*cooldownEntry)}
}

// Allow consumes the (user, command) slot at now. When the slot is not free
// yet it returns false and how long until it is.
func (c *Cooldowns) Allow(userID, command string, now time.Time) (time.Duration, bool) {
	if c == nil || c.interval <= 0 {
		return 0, true
	}
	key := userID + "\x00" + command

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &cooldownEntry{limiter: rate.NewLimiter(rate.Every(c.interval), 1)}
		c.entries[key] = e
	}

	if tokens := e.limiter.TokensAt(now); tokens < 1 {
		wait := time.Duration((1 - tokens) * float64(c.interval))
		return wait, false
	}
	e.limiter.AllowN(now, 1)
	e.last = now
	return 0, true
}

// Sweep drops entries whose cooldown has fully elapsed and returns how many
// were removed.
func (c *Cooldowns) Sweep(now time.Time) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if now.Sub(e.last) >= c.interval {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}

// Len is the number of tracked (user, command) pairs.
func (c *Cooldowns) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
