package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var batchURLsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "pagecache_batch_urls_total",
	Help: "Total URLs processed by batch fetches by result",
}, []string{"result"}) // "ok", "error"

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of parallel fetches
	MaxConcurrency int
	// Timeout per URL fetch
	Timeout time.Duration
}

// DefaultConfig returns the default batch configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 5,
		Timeout:        30 * time.Second,
	}
}

// Getter is satisfied by *pagecache.Cache and any fetch.Fetcher
type Getter interface {
	Get(ctx context.Context, url string) (string, error)
}

// Result is the outcome of fetching a single URL
type Result struct {
	URL   string
	Body  string
	Error error
}

// Fetcher runs Getter.Get for many URLs with bounded concurrency
type Fetcher struct {
	getter Getter
	config Config
}

// NewFetcher creates a new batch fetcher
func NewFetcher(getter Getter, config Config) *Fetcher {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 5
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Fetcher{
		getter: getter,
		config: config,
	}
}

type job struct {
	index int
	url   string
}

// FetchAll fetches every distinct URL and returns results in input order.
// Duplicate URLs are fetched once. The returned error is the first failure
// in input order; results for all other URLs are still populated.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) ([]Result, error) {
	start := time.Now()

	unique := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}

	results := make([]Result, len(unique))
	done := make([]bool, len(unique))
	if len(unique) == 0 {
		return results, nil
	}

	workers := f.config.MaxConcurrency
	if workers > len(unique) {
		workers = len(unique)
	}

	jobs := make(chan job)
	go func() {
		defer close(jobs)
		for i, u := range unique {
			select {
			case jobs <- job{index: i, url: u}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go f.worker(ctx, jobs, results, done, &wg, i)
	}
	wg.Wait()

	var firstErr error
	failed := 0
	for i := range results {
		// URLs never handed to a worker because the context ended
		if !done[i] {
			results[i] = Result{URL: unique[i], Error: ctx.Err()}
		}
		if results[i].Error != nil {
			failed++
			batchURLsTotal.WithLabelValues("error").Inc()
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch %s: %w", results[i].URL, results[i].Error)
			}
			continue
		}
		batchURLsTotal.WithLabelValues("ok").Inc()
	}

	log.Info().
		Int("urls", len(unique)).
		Int("failed", failed).
		Int("workers", workers).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")

	if firstErr != nil {
		return results, fmt.Errorf("batch (%d/%d failed): %w", failed, len(unique), firstErr)
	}
	return results, nil
}

// worker processes URLs from the queue. Each result slot is written by
// exactly one worker.
func (f *Fetcher) worker(ctx context.Context, jobs <-chan job, results []Result, done []bool, wg *sync.WaitGroup, workerID int) {
	defer wg.Done()
	processed := 0

	for j := range jobs {
		urlCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
		body, err := f.getter.Get(urlCtx, j.url)
		cancel()

		if err != nil {
			log.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("url", j.url).
				Msg("URL fetch failed")
		}

		results[j.index] = Result{URL: j.url, Body: body, Error: err}
		done[j.index] = true
		processed++
	}

	log.Debug().
		Int("worker_id", workerID).
		Int("processed", processed).
		Msg("Worker completed")
}
