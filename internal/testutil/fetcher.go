package testutil

import (
	"context"
	"sync"
	"time"
)

// CountingFetcher is a fetch.Fetcher that returns canned bodies and counts calls.
type CountingFetcher struct {
	mu     sync.Mutex
	calls  map[string]int
	bodies map[string]string
	err    error

	// Delay is applied before every response
	Delay time.Duration

	// Gate, when set, blocks every call until it is closed
	Gate chan struct{}
}

// NewCountingFetcher creates a fetcher that answers "body:<url>" by default.
func NewCountingFetcher() *CountingFetcher {
	return &CountingFetcher{
		calls:  make(map[string]int),
		bodies: make(map[string]string),
	}
}

// SetBody configures the body returned for url.
func (f *CountingFetcher) SetBody(url, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies[url] = body
}

// Fail makes subsequent calls return err. Pass nil to recover.
func (f *CountingFetcher) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

// Get implements fetch.Fetcher.
func (f *CountingFetcher) Get(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.calls[url]++
	err := f.err
	body, ok := f.bodies[url]
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Delay > 0 {
		time.Sleep(f.Delay)
	}

	if err != nil {
		return "", err
	}
	if !ok {
		body = "body:" + url
	}
	return body, nil
}

// Calls returns the number of calls for url.
func (f *CountingFetcher) Calls(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

// TotalCalls returns the number of calls across all URLs.
func (f *CountingFetcher) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}
