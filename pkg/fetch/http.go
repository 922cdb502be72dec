package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for origin fetches.
var (
	fetchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagecache_fetch_requests_total",
		Help: "Total origin fetches by status",
	}, []string{"status"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pagecache_fetch_duration_seconds",
		Help:    "Origin fetch duration in seconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	fetchErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pagecache_fetch_errors_total",
		Help: "Total origin fetch errors by class",
	}, []string{"class"})
)

// DefaultUserAgent is sent when the configuration does not name one.
const DefaultUserAgent = "pagecache/0.1.0"

// Config holds the HTTP fetcher configuration.
type Config struct {
	// User-Agent header sent with every request
	UserAgent string

	// Timeout bounds a single request including reading the body
	Timeout time.Duration

	// FailOnStatus turns 4xx/5xx responses into a *StatusError.
	// When false any received body is returned, whatever the status.
	FailOnStatus bool
}

// DefaultConfig returns the default fetcher configuration.
func DefaultConfig() Config {
	return Config{
		UserAgent:    DefaultUserAgent,
		Timeout:      30 * time.Second,
		FailOnStatus: false,
	}
}

// HTTPFetcher fetches page bodies over HTTP.
type HTTPFetcher struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new HTTP fetcher.
func New(cfg Config) (*HTTPFetcher, error) {
	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive (got %s)", cfg.Timeout)
	}

	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "fetcher").Logger(),
	}, nil
}

// Get performs a GET request and returns the response body.
func (f *HTTPFetcher) Get(ctx context.Context, url string) (string, error) {
	startTime := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(startTime).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)

	f.logger.Debug().
		Str("url", url).
		Msg("Fetching page")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Debug().Err(err).Str("url", url).Msg("HTTP request failed")
		fetchErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		fetchRequestsTotal.WithLabelValues("network_error").Inc()
		return "", &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	fetchRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if class := classifyStatus(resp.StatusCode); class != "" {
		f.logger.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Str("error_class", string(class)).
			Msg("Origin returned error status")

		if f.config.FailOnStatus {
			fetchErrorsTotal.WithLabelValues(string(class)).Inc()
			// Drain so the connection can be reused
			_, _ = io.Copy(io.Discard, resp.Body)
			return "", &StatusError{
				URL:        url,
				StatusCode: resp.StatusCode,
				ErrorClass: class,
				Message:    resp.Status,
			}
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fetchErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return "", &NetworkError{URL: url, Err: fmt.Errorf("read response body: %w", err)}
	}

	return string(body), nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (f *HTTPFetcher) SetHTTPClient(client *http.Client) {
	if client != nil {
		f.httpClient = client
	}
}

// IsTimeout reports whether err stems from a deadline or client timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}
