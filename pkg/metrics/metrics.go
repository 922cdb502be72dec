// Package metrics documents the Prometheus metrics exported by pagecache.
// All metrics are defined in their respective packages (cache, fetch,
// pagecache, batch) to maintain modularity and avoid circular dependencies.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by pagecache.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics registered on Registry.
var Gatherer = prometheus.DefaultGatherer

// Handler serves every metric gathered from Gatherer in the Prometheus
// exposition format. Scrape counts are registered on Registry.
func Handler() http.Handler {
	return promhttp.InstrumentMetricHandler(
		Registry,
		promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{}),
	)
}

// Metrics Documentation
//
// Page Cache Metrics (pkg/pagecache):
//   - pagecache_hits_total (Counter): Requests served from the store
//   - pagecache_misses_total (Counter): Requests that went to the origin
//   - pagecache_errors_total{kind} (Counter): Failed requests (fetch, cache_unavailable)
//   - pagecache_shared_fetches_total (Counter): Misses answered by an in-flight fetch
//   - pagecache_request_duration_seconds{result} (Histogram): Duration by hit, miss, error
//
// Store Metrics (pkg/cache):
//   - pagecache_store_errors_total{operation} (Counter): Store errors (get, set, incr)
//   - pagecache_store_written_bytes_total (Counter): Bytes of page bodies written
//
// Fetch Metrics (pkg/fetch):
//   - pagecache_fetch_requests_total{status} (Counter): Origin fetches by HTTP status
//   - pagecache_fetch_duration_seconds (Histogram): Origin fetch duration
//   - pagecache_fetch_errors_total{class} (Counter): Fetch errors (client, server, network)
//
// Batch Metrics (pkg/batch):
//   - pagecache_batch_urls_total{result} (Counter): URLs processed by batch fetches
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(pagecache_hits_total[5m])) /
//   (sum(rate(pagecache_hits_total[5m])) + sum(rate(pagecache_misses_total[5m])))
//
//   # Store Availability Errors
//   rate(pagecache_errors_total{kind="cache_unavailable"}[5m])
//
//   # P95 Origin Latency
//   histogram_quantile(0.95, rate(pagecache_fetch_duration_seconds_bucket[5m]))
