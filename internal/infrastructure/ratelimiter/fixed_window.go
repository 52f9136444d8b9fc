package ratelimiter

import (
	"sync"
	"sync/atomic"
	"time"
)

// FixedWindowRateLimiter caps events per key per window. The websocket read
// pump uses it to bound inbound frames per connection.
type FixedWindowRateLimiter struct {
	counts      sync.Map // string -> *windowData
	limit       int64
	window      time.Duration
	now         func() time.Time
	cleanupTick *time.Ticker
	done        chan struct{}
	closeOnce   sync.Once
}

type windowData struct {
	count   int64        // atomic
	resetAt atomic.Value // time.Time
	mu      sync.Mutex   // only for reset
}

func NewFixedWindowRateLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		limit:       int64(limit),
		window:      window,
		now:         time.Now,
		cleanupTick: time.NewTicker(window),
		done:        make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

// Allow counts one event for key. When the window is exhausted it returns
// false and the time left until the window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()
	nextReset := now.Truncate(rl.window).Add(rl.window)

	val, _ := rl.counts.LoadOrStore(key, &windowData{})
	data := val.(*windowData)

	data.mu.Lock()
	defer data.mu.Unlock()

	resetAt, ok := data.resetAt.Load().(time.Time)
	if !ok || !now.Before(resetAt) {
		atomic.StoreInt64(&data.count, 1)
		data.resetAt.Store(nextReset)
		return true, 0
	}

	if atomic.AddInt64(&data.count, 1) > rl.limit {
		atomic.AddInt64(&data.count, -1)
		return false, resetAt.Sub(now)
	}
	return true, 0
}

func (rl *FixedWindowRateLimiter) Forget(key string) {
	rl.counts.Delete(key)
}

func (rl *FixedWindowRateLimiter) startCleanup() {
	for {
		select {
		case <-rl.cleanupTick.C:
			rl.cleanup()
		case <-rl.done:
			return
		}
	}
}

func (rl *FixedWindowRateLimiter) cleanup() {
	now := rl.now()
	rl.counts.Range(func(key, value any) bool {
		data := value.(*windowData)
		if resetAt, ok := data.resetAt.Load().(time.Time); ok && now.After(resetAt) {
			rl.counts.Delete(key)
		}
		return true
	})
}

func (rl *FixedWindowRateLimiter) Close() {
	rl.closeOnce.Do(func() {
		close(rl.done)
		rl.cleanupTick.Stop()
	})
}
