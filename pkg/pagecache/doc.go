// Package pagecache implements cache-aside page fetching.
//
// A Cache checks the store for cache:<url> before calling its fetcher. On a
// hit the stored body is returned with no further side effects. On a miss the
// body is fetched, written back with an expiry, and count:<url> is
// incremented:
//
//	store := cache.NewRedisStore(redisClient)
//	fetcher, _ := fetch.New(fetch.DefaultConfig())
//
//	pages := pagecache.New(store, fetcher, pagecache.WithTTL(10*time.Second))
//	body, err := pages.Get(ctx, "http://example.com")
//
// Wrap decorates any fetch.Fetcher with the same behavior:
//
//	cached := pagecache.Wrap(store, fetch.Func(myFetch), 10*time.Second)
//	body, err := cached.Get(ctx, "http://example.com")
//
// Concurrent misses on the same URL are not coordinated unless
// WithSingleFlight is given: each caller fetches, the last write wins, and
// the counter is incremented once per caller.
//
// Failures surface as *FetchError or *CacheUnavailableError. Nothing is
// retried and the cache is never bypassed.
package pagecache
