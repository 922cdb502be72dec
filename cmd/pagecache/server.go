package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	neturl "net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/pagecache/pkg/fetch"
	"github.com/Sternrassler/pagecache/pkg/metrics"
	"github.com/Sternrassler/pagecache/pkg/pagecache"
	"github.com/rs/zerolog"
)

// pinger reports whether the store is reachable.
type pinger interface {
	Ping(ctx context.Context) error
}

type server struct {
	pages  *pagecache.Cache
	store  pinger
	logger zerolog.Logger
}

func newServer(pages *pagecache.Cache, store pinger, logger zerolog.Logger) http.Handler {
	s := &server{
		pages:  pages,
		store:  store,
		logger: logger.With().Str("component", "server").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", s.readyHandler)
	mux.HandleFunc("/page", s.pageHandler)
	mux.HandleFunc("/count", s.countHandler)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// runServer serves handler on addr until ctx is cancelled.
func runServer(ctx context.Context, addr string, handler http.Handler, logger zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("Starting pagecache server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down pagecache server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

func (s *server) readyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "READY")
}

func (s *server) pageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	if err := checkPageURL(url); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	body, hit, err := s.pages.Load(r.Context(), url)
	if err != nil {
		s.writeError(w, url, err)
		return
	}

	cacheStatus := "MISS"
	if hit {
		cacheStatus = "HIT"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(body)); err != nil {
		s.logger.Warn().Err(err).Str("url", url).Msg("Failed to write response")
	}
}

// checkPageURL accepts only absolute http and https URLs.
func checkPageURL(raw string) error {
	u, err := neturl.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url has no host")
	}
	return nil
}

func (s *server) countHandler(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}

	n, err := s.pages.Count(r.Context(), url)
	if err != nil {
		s.writeError(w, url, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, strconv.FormatInt(n, 10))
}

// writeError maps page cache errors to HTTP statuses.
func (s *server) writeError(w http.ResponseWriter, url string, err error) {
	status := http.StatusInternalServerError
	switch {
	case pagecache.IsFetchError(err) && fetch.IsTimeout(err):
		status = http.StatusGatewayTimeout
	case pagecache.IsFetchError(err):
		status = http.StatusBadGateway
	case pagecache.IsCacheUnavailable(err):
		status = http.StatusServiceUnavailable
	}

	s.logger.Error().Err(err).Str("url", url).Int("status", status).Msg("Page request failed")
	http.Error(w, err.Error(), status)
}
