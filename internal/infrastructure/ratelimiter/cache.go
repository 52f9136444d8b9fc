package ratelimiter

import (
	"errors"
	"time"
)

// ErrCacheMiss is returned for absent or expired keys. The limiter treats it
// as a full bucket.
var ErrCacheMiss = errors.New("cache miss")

// GetterSetter stores bucket token counts per source key. InMemory and Redis
// implement it.
type GetterSetter interface {
	Get(key string) (int, error)
	Set(key string, value int) error
	// SetWithExpiration stores value for expiration; zero means no expiry.
	SetWithExpiration(key string, value int, expiration time.Duration) error
	Close() error
}

var (
	_ GetterSetter = (*InMemory)(nil)
	_ GetterSetter = (*Redis)(nil)
)
