// Package cache provides the ephemeral TTL key/value tier used for session
// metadata. The cache is advisory: callers must treat every failure as a miss
// and fall back to the durable store.
package cache

import (
	"context"
	"time"
)

// Cache is a TTL key/value store.
type Cache interface {
	// Get returns the value for key, or ok=false if the key is absent or
	// expired.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Set stores value under key with the given time-to-live.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// SessionKey builds the cache key for a session id.
func SessionKey(sessionID string) string {
	return "session:" + sessionID
}

// Noop is a Cache that stores nothing. It stands in when the cache tier is
// unavailable at startup; every read is a miss.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) Close() error { return nil }
