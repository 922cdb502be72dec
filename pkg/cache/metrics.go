package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StoreErrors tracks store operation errors
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pagecache_store_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "get", "set", "incr"
	)

	// StoreWrittenBytes tracks the volume of page bodies written
	StoreWrittenBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pagecache_store_written_bytes_total",
			Help: "Total number of bytes written to the cache store",
		},
	)
)
