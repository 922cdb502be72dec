package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found in the store
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidTTL indicates a write was attempted without a positive expiry
	ErrInvalidTTL = errors.New("ttl must be positive")
)

// Store is the key-value store the page cache reads and writes.
// Implementations must be safe for concurrent use and rely on the backend
// for atomicity of each individual operation.
type Store interface {
	// Get returns the value stored at key, or ErrCacheMiss if it is absent
	// or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithExpiry stores value at key. The key disappears after ttl.
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Incr atomically increments the integer at key by one and returns the
	// new value. A missing key counts as zero.
	Incr(ctx context.Context, key string) (int64, error)
}
