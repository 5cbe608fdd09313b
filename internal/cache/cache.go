// Package cache stores rendered public responses, in memory or in Redis.
package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrMiss is returned when a key is absent or expired.
	ErrMiss = errors.New("cache miss")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("cache closed")
)

// Store is the byte-oriented cache used by the HTTP cache middleware.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Clear drops every entry owned by the store.
	Clear(ctx context.Context) error
	Close() error
}

// New returns a Redis store when redisURL is set and a memory store otherwise.
func New(redisURL string, ttl time.Duration) (Store, error) {
	if redisURL == "" {
		return NewMemory(ttl), nil
	}
	return NewRedis(RedisOptions{URL: redisURL, DefaultTTL: ttl})
}
