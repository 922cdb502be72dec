// Package fetch retrieves page bodies from origin servers.
package fetch

import "context"

// Fetcher retrieves the body of a URL.
type Fetcher interface {
	Get(ctx context.Context, url string) (string, error)
}

// Func adapts an ordinary function to the Fetcher interface.
type Func func(ctx context.Context, url string) (string, error)

// Get calls f(ctx, url).
func (f Func) Get(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}
