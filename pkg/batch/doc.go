// Package batch fetches many URLs in parallel through a page cache.
//
// Example usage:
//
//	fetcher := batch.NewFetcher(pages, batch.DefaultConfig())
//	results, err := fetcher.FetchAll(ctx, []string{
//		"https://example.com/a",
//		"https://example.com/b",
//	})
//
// The batch fetcher:
//   - Spawns a worker pool (default 5 workers)
//   - Distributes URLs across workers, one timeout per URL
//   - Returns one Result per distinct URL, in input order
//   - Reports the first failure while still returning every other result
package batch
