package pagecache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Sternrassler/pagecache/pkg/cache"
	"github.com/Sternrassler/pagecache/pkg/fetch"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is the page lifetime used by Get.
const DefaultTTL = 10 * time.Second

const tracerName = "github.com/Sternrassler/pagecache/pkg/pagecache"

// Cache fetches pages through a cache-aside store.
type Cache struct {
	store   cache.Store
	fetcher fetch.Fetcher
	ttl     time.Duration
	logger  zerolog.Logger
	tracer  trace.Tracer

	// nil unless WithSingleFlight is set
	group *singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets the TTL used by Get.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithTracerProvider sets the tracer provider. The global provider is used otherwise.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Cache) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithSingleFlight collapses concurrent misses on the same URL into one
// fetch, one store write and one counter increment. Callers waiting on
// another caller's fetch still honor their own context.
func WithSingleFlight() Option {
	return func(c *Cache) {
		c.group = &singleflight.Group{}
	}
}

// New creates a new page cache.
func New(store cache.Store, fetcher fetch.Fetcher, opts ...Option) *Cache {
	if store == nil {
		panic("cache store cannot be nil")
	}
	if fetcher == nil {
		panic("fetcher cannot be nil")
	}

	c := &Cache{
		store:   store,
		fetcher: fetcher,
		ttl:     DefaultTTL,
		logger:  log.With().Str("component", "pagecache").Logger(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Wrap returns a fetcher that runs the cache-aside flow around next,
// caching every body for ttl.
func Wrap(store cache.Store, next fetch.Fetcher, ttl time.Duration, opts ...Option) fetch.Fetcher {
	return New(store, next, append([]Option{WithTTL(ttl)}, opts...)...)
}

// TTL returns the TTL used by Get.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the page at url using the configured TTL.
func (c *Cache) Get(ctx context.Context, url string) (string, error) {
	return c.Fetch(ctx, url, c.ttl)
}

// Fetch returns the cached body of url, or fetches it, stores it for ttl
// and increments the access counter.
func (c *Cache) Fetch(ctx context.Context, url string, ttl time.Duration) (string, error) {
	body, _, err := c.load(ctx, url, ttl)
	return body, err
}

// Load is Get that also reports whether the body came from the store.
func (c *Cache) Load(ctx context.Context, url string) (body string, hit bool, err error) {
	return c.load(ctx, url, c.ttl)
}

func (c *Cache) load(ctx context.Context, url string, ttl time.Duration) (string, bool, error) {
	if url == "" {
		return "", false, ErrEmptyURL
	}
	if ttl <= 0 {
		return "", false, fmt.Errorf("%w (got %s)", ErrInvalidTTL, ttl)
	}

	startTime := time.Now()
	ctx, span := c.tracer.Start(ctx, "pagecache.fetch",
		trace.WithAttributes(
			attribute.String("url", url),
			attribute.Int64("ttl_ms", ttl.Milliseconds()),
		))
	defer span.End()

	body, hit, err := c.fetch(ctx, url, ttl)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if IsFetchError(err) {
			Errors.WithLabelValues("fetch").Inc()
		} else {
			Errors.WithLabelValues("cache_unavailable").Inc()
		}
	case hit:
		result = "hit"
	}
	span.SetAttributes(attribute.Bool("cache.hit", hit))
	requestDuration.WithLabelValues(result).Observe(time.Since(startTime).Seconds())

	return body, hit, err
}

// Count returns the access counter of url, 0 if it was never fetched.
func (c *Cache) Count(ctx context.Context, url string) (int64, error) {
	if url == "" {
		return 0, ErrEmptyURL
	}

	countKey := cache.CountKey(url)
	data, err := c.store.Get(ctx, countKey)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return 0, nil
		}
		return 0, &CacheUnavailableError{Op: OpGet, Key: countKey, Err: err}
	}

	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter %s: %w", countKey, err)
	}
	return n, nil
}

func (c *Cache) fetch(ctx context.Context, url string, ttl time.Duration) (string, bool, error) {
	pageKey := cache.PageKey(url)

	data, err := c.store.Get(ctx, pageKey)
	if err == nil {
		CacheHits.Inc()
		c.logger.Debug().
			Str("url", url).
			Str("key", pageKey).
			Msg("Cache hit")
		return string(data), true, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		c.logger.Warn().Err(err).Str("key", pageKey).Msg("Cache get error")
		return "", false, &CacheUnavailableError{Op: OpGet, Key: pageKey, Err: err}
	}

	c.logger.Debug().
		Str("url", url).
		Str("key", pageKey).
		Msg("Cache miss")

	if c.group == nil {
		CacheMisses.Inc()
		body, err := c.populate(ctx, url, ttl)
		return body, false, err
	}
	return c.populateShared(ctx, url, ttl)
}

// flightResult is the value shared by every caller of one flight.
type flightResult struct {
	body string
	hit  bool
}

// populateShared runs populate at most once per URL at a time. The flight
// is detached from the caller's cancellation so one caller giving up does
// not fail the others; it is bounded by the fetcher and store timeouts.
// The first caller's TTL is used for the write.
func (c *Cache) populateShared(ctx context.Context, url string, ttl time.Duration) (string, bool, error) {
	flightCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(url, func() (interface{}, error) {
		// A flight that finished just before this one may have filled the cache
		pageKey := cache.PageKey(url)
		data, err := c.store.Get(flightCtx, pageKey)
		if err == nil {
			return flightResult{body: string(data), hit: true}, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", pageKey).Msg("Cache get error")
			return nil, &CacheUnavailableError{Op: OpGet, Key: pageKey, Err: err}
		}

		body, err := c.populate(flightCtx, url, ttl)
		if err != nil {
			return nil, err
		}
		return flightResult{body: body}, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			if IsFetchError(res.Err) {
				CacheMisses.Inc()
			}
			return "", false, res.Err
		}
		if res.Shared {
			SharedFetches.Inc()
		}
		fr := res.Val.(flightResult)
		if fr.hit {
			CacheHits.Inc()
		} else {
			CacheMisses.Inc()
		}
		return fr.body, fr.hit, nil
	case <-ctx.Done():
		return "", false, &FetchError{URL: url, Err: ctx.Err()}
	}
}

// populate fetches url, stores the body and increments the access counter.
func (c *Cache) populate(ctx context.Context, url string, ttl time.Duration) (string, error) {
	body, err := c.fetcher.Get(ctx, url)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", url).Msg("Fetch failed")
		return "", &FetchError{URL: url, Err: err}
	}

	pageKey := cache.PageKey(url)
	if err := c.store.SetWithExpiry(ctx, pageKey, []byte(body), ttl); err != nil {
		c.logger.Warn().Err(err).Str("key", pageKey).Msg("Cache set error")
		return "", &CacheUnavailableError{Op: OpSet, Key: pageKey, Err: err}
	}

	countKey := cache.CountKey(url)
	count, err := c.store.Incr(ctx, countKey)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", countKey).Msg("Counter increment error")
		return "", &CacheUnavailableError{Op: OpIncr, Key: countKey, Err: err}
	}

	c.logger.Debug().
		Str("url", url).
		Dur("ttl", ttl).
		Int64("count", count).
		Int("bytes", len(body)).
		Msg("Cached page")

	return body, nil
}
