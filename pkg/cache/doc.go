// Package cache provides the key-value store behind the page cache.
//
// The store holds two kinds of entries for every URL:
//
//   - cache:<url> - the fetched page body, written with an expiry
//   - count:<url> - an access counter, incremented on every cache miss
//
// Keys are the literal prefix concatenated with the raw URL. No encoding is
// applied so existing tooling that inspects Redis by key keeps working.
//
// # Basic Usage
//
//	// Create Redis client
//	redisClient := cache.NewRedisClient(cache.RedisConfig{
//		Addr: "localhost:6379",
//	})
//	defer redisClient.Close()
//
//	// Create store
//	store := cache.NewRedisStore(redisClient)
//
//	// Read a cached page
//	body, err := store.Get(ctx, cache.PageKey("https://example.com"))
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// Cache miss - fetch from origin
//	}
//
//	// Store with expiry and count the access
//	err = store.SetWithExpiry(ctx, cache.PageKey(url), body, 10*time.Second)
//	n, err := store.Incr(ctx, cache.CountKey(url))
//
// # Metrics
//
//   - pagecache_store_errors_total{operation} - Store operation errors
//   - pagecache_store_written_bytes_total - Bytes written to the store
package cache
