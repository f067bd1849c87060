// Package cache provides byte-level caching for snapshots, layouts and
// rendered artifacts.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [NullCache]: stores nothing (caching disabled)
//
// # Keys
//
// A [Keyer] builds cache keys. Layout keys hash the snapshot content together
// with every option that changes the result, so a changed snapshot or a
// different geometry never hits a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(cache.Hash(snapshotJSON), cache.LayoutKeyOpts{TrunkX: 250})
//
// Use [NewScopedKeyer] to give each tenant its own namespace.
//
// # Concurrency
//
// All backends are safe for concurrent use.
package cache

import (
	"context"
	"time"
)

// Default time-to-live per entry type.
const (
	TTLSnapshot = 5 * time.Minute
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 24 * time.Hour
)

// Cache stores opaque values by key. A zero ttl means no expiry.
//
// Get reports a miss with ok=false and a nil error; errors are reserved for
// backend failures. Callers treat cache errors as misses.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
