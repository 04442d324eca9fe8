// Package cache provides the byte-level caches behind the asset colorizer
// and the share server.
//
// All backends implement [Cache]. Callers build keys with a [Keyer] so the
// same logical entry maps to the same key regardless of backend:
//
//   - [NullCache] stores nothing (caching disabled, tests)
//   - [MemoryCache] is an in-process map with optional TTLs
//   - [FileCache] persists entries under the user cache directory (CLI)
//   - [RedisCache] shares entries between server replicas
//
// Entries are write-once-per-key in practice: two concurrent writers for the
// same key store equivalent data, so the last write winning is harmless.
package cache

import (
	"context"
	"time"
)

// Default TTLs by entry kind.
const (
	// ColorizeTTL bounds how long recolored markup is kept. Asset contents
	// rarely change so the TTL is long.
	ColorizeTTL = 7 * 24 * time.Hour

	// ShareLinkTTL bounds how long a share link is remembered for an
	// unchanged avatar set.
	ShareLinkTTL = 24 * time.Hour
)

// Cache is a byte-oriented key/value store.
//
// Get reports a miss with hit == false and a nil error; errors are reserved
// for backend failures. A ttl of zero means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
