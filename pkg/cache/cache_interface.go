package cache

import (
	"context"
	"time"
)

// Cache is the contract for the read cache layer.
type Cache interface {
	// Get reads a key and unmarshals the stored value into dest.
	// found=false means cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores a value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
