// Package cache stores raw upstream API responses so repeated analyses of
// the same SBOM do not hit registries again.
//
// Several backends implement [Cache]:
//
//   - [FileCache]: one JSON file per key under a directory (CLI default)
//   - [BoltCache]: a single bbolt database file
//   - [RedisCache]: a shared Redis instance (server deployments)
//   - [MongoCache]: a MongoDB collection with a TTL index
//   - [NullCache]: caching disabled
//
// Use [Open] to construct the backend named in configuration.
package cache

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendFile  = "file"
	BackendBolt  = "bolt"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// DefaultTTL is how long upstream responses are reused.
const DefaultTTL = 24 * time.Hour

// Options selects and configures a cache backend.
type Options struct {
	Backend string

	// Dir holds the file cache entries and the bbolt database.
	Dir string

	RedisURL string

	MongoURI      string
	MongoDatabase string
}

// Open constructs the backend selected by opts.Backend.
// An empty backend selects the file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("%w: file cache needs a directory", ErrInvalidOptions)
		}
		return NewFileCache(opts.Dir)
	case BackendBolt:
		if opts.Dir == "" {
			return nil, fmt.Errorf("%w: bolt cache needs a directory", ErrInvalidOptions)
		}
		return NewBoltCache(filepath.Join(opts.Dir, "cache.db"))
	case BackendRedis:
		return NewRedisCache(ctx, opts.RedisURL)
	case BackendMongo:
		return NewMongoCache(ctx, opts.MongoURI, opts.MongoDatabase)
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalidOptions, opts.Backend)
	}
}
