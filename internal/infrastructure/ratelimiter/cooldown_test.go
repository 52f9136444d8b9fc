package ratelimiter_test

import (
	"testing"
	"time"

	"github.com/hilthontt/burnbox/internal/infrastructure/ratelimiter"
	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCooldown_CheckAndRecord(t *testing.T) {
	clock := newClock()
	cd := ratelimiter.NewCooldown(10*time.Second, clock.Now)

	ok, wait := cd.CheckAndRecord("a")
	assert.True(t, ok)
	assert.Zero(t, wait)

	clock.Advance(1 * time.Second)
	ok, wait = cd.CheckAndRecord("a")
	assert.False(t, ok)
	assert.Equal(t, 9, wait)

	clock.Advance(8500 * time.Millisecond)
	ok, wait = cd.CheckAndRecord("a")
	assert.False(t, ok)
	assert.Equal(t, 1, wait, "remaining time is rounded up")

	clock.Advance(500 * time.Millisecond)
	ok, wait = cd.CheckAndRecord("a")
	assert.True(t, ok, "exactly one window later is allowed")
	assert.Zero(t, wait)
}

func TestCooldown_RejectionDoesNotExtendWindow(t *testing.T) {
	clock := newClock()
	cd := ratelimiter.NewCooldown(10*time.Second, clock.Now)

	ok, _ := cd.CheckAndRecord("a")
	assert.True(t, ok)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		ok, _ = cd.CheckAndRecord("a")
		assert.False(t, ok)
	}

	clock.Advance(5 * time.Second)
	ok, _ = cd.CheckAndRecord("a")
	assert.True(t, ok)
}

func TestCooldown_KeysAreIndependent(t *testing.T) {
	clock := newClock()
	cd := ratelimiter.NewCooldown(10*time.Second, clock.Now)

	ok, _ := cd.CheckAndRecord("a")
	assert.True(t, ok)
	ok, _ = cd.CheckAndRecord("b")
	assert.True(t, ok)
	assert.Equal(t, 2, cd.Len())
}

func TestCooldown_Forget(t *testing.T) {
	clock := newClock()
	cd := ratelimiter.NewCooldown(10*time.Second, clock.Now)

	ok, _ := cd.CheckAndRecord("a")
	assert.True(t, ok)

	cd.Forget("a")
	assert.Zero(t, cd.Len())

	ok, _ = cd.CheckAndRecord("a")
	assert.True(t, ok)
}
