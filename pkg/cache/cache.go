// Package cache stores portal responses between runs.
//
// # Backends
//
// Every backend implements [Cache]:
//
//   - [FileCache]: one JSON file per key under the user cache directory
//   - [RedisCache]: a shared Redis instance, keys namespaced per tool
//   - [NullCache]: stores nothing, used when caching is disabled
//
// [Open] picks a backend from [Options], which the CLI fills from the
// configuration file.
//
// # Keys and TTL
//
// Keys are opaque strings. Callers namespace them ("modportal:flib") so
// unrelated data never collides. A TTL of zero means the entry never
// expires; expired entries read as misses.
package cache

import (
	"context"
	"time"
)

// TTLPortal is the default lifetime of cached mod portal metadata.
const TTLPortal = 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
//
// Get returns hit=false with a nil error on a miss. Implementations must be
// safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by backends that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}
