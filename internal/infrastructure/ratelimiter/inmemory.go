package ratelimiter

import (
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

type bucketEntry struct {
	tokens    int
	expiresAt time.Time
}

func (e bucketEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

type InMemoryOptions struct {
	// Now is the clock used for expiry. It should match the limiter's.
	Now           func() time.Time
	SweepInterval time.Duration
}

// InMemory is a process-local GetterSetter. Expired entries read as misses
// and are swept on SweepInterval.
type InMemory struct {
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]bucketEntry

	stop     chan struct{}
	stopOnce sync.Once
}

func NewInMemory(opts InMemoryOptions) *InMemory {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}

	im := &InMemory{
		now:     opts.Now,
		entries: make(map[string]bucketEntry),
		stop:    make(chan struct{}),
	}
	go im.sweepLoop(opts.SweepInterval)

	return im
}

func (i *InMemory) Get(key string) (int, error) {
	i.mu.RLock()
	entry, ok := i.entries[key]
	i.mu.RUnlock()

	if !ok || entry.expired(i.now()) {
		return 0, ErrCacheMiss
	}
	return entry.tokens, nil
}

func (i *InMemory) Set(key string, value int) error {
	return i.SetWithExpiration(key, value, 0)
}

func (i *InMemory) SetWithExpiration(key string, value int, expiration time.Duration) error {
	entry := bucketEntry{tokens: value}
	if expiration > 0 {
		entry.expiresAt = i.now().Add(expiration)
	}

	i.mu.Lock()
	i.entries[key] = entry
	i.mu.Unlock()

	return nil
}

// Len counts stored entries, expired ones included until the next sweep.
func (i *InMemory) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (i *InMemory) Sweep() int {
	now := i.now()

	i.mu.Lock()
	defer i.mu.Unlock()

	removed := 0
	for key, entry := range i.entries {
		if entry.expired(now) {
			delete(i.entries, key)
			removed++
		}
	}
	return removed
}

func (i *InMemory) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			i.Sweep()
		case <-i.stop:
			return
		}
	}
}

func (i *InMemory) Close() error {
	i.stopOnce.Do(func() {
		close(i.stop)
	})
	return nil
}
