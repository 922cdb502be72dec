package pagecache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks requests served from the store
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagecache_hits_total",
			Help: "Total number of page cache hits",
		},
	)

	// CacheMisses tracks requests that went to the origin
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagecache_misses_total",
			Help: "Total number of page cache misses",
		},
	)

	// Errors tracks failed requests by kind
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagecache_errors_total",
			Help: "Total number of failed page cache requests by kind",
		},
		[]string{"kind"}, // "fetch", "cache_unavailable"
	)

	// SharedFetches tracks callers that received another caller's fetch result
	SharedFetches = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagecache_shared_fetches_total",
			Help: "Total number of misses answered by an in-flight fetch for the same URL",
		},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pagecache_request_duration_seconds",
			Help:    "Page cache request duration in seconds by result",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"result"}, // "hit", "miss", "error"
	)
)
