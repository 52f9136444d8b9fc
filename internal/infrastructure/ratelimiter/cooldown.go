package ratelimiter

import (
	"math"
	"sync"
	"time"
)

// Cooldown admits one action per key per window, measured from the last
// accepted action. Rejected attempts do not move the window.
type Cooldown struct {
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func NewCooldown(window time.Duration, now func() time.Time) *Cooldown {
	if now == nil {
		now = time.Now
	}

	return &Cooldown{
		window: window,
		now:    now,
		last:   make(map[string]time.Time),
	}
}

// CheckAndRecord reports whether key may act now. When it may not, the
// second value is the wait in whole seconds, rounded up.
func (c *Cooldown) CheckAndRecord(key string) (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if last, ok := c.last[key]; ok {
		if elapsed := now.Sub(last); elapsed < c.window {
			return false, int(math.Ceil((c.window - elapsed).Seconds()))
		}
	}

	c.last[key] = now
	return true, 0
}

func (c *Cooldown) Forget(key string) {
	c.mu.Lock()
	delete(c.last, key)
	c.mu.Unlock()
}

func (c *Cooldown) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.last)
}
