package cache

import (
	"context"
	"time"
)

// NullCache satisfies Cache without storing anything. Every Get misses.
// It is used when caching is disabled with --no-cache or cache.kind = "none".
type NullCache struct{}

// NewNullCache returns a cache that stores nothing.
func NewNullCache() *NullCache {
	return &NullCache{}
}

// Get reports a miss.
func (*NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

// Delete is a no-op.
func (*NullCache) Delete(context.Context, string) error {
	return nil
}

// Close is a no-op.
func (*NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
