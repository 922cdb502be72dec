package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sternrassler/pagecache/pkg/cache"
	"github.com/Sternrassler/pagecache/pkg/config"
	"github.com/Sternrassler/pagecache/pkg/fetch"
	"github.com/Sternrassler/pagecache/pkg/logging"
	"github.com/Sternrassler/pagecache/pkg/pagecache"
	"github.com/Sternrassler/pagecache/pkg/tracing"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds the long-lived clients shared by every command.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	store   *cache.RedisStore
	fetcher *fetch.HTTPFetcher
	pages   *pagecache.Cache
	tracing *tracing.Provider
}

// annotationNeedsApp marks commands that talk to Redis and the origin.
const annotationNeedsApp = "pagecache/needs-app"

type rootFlags struct {
	redisAddr    string
	redisPass    string
	redisDB      int
	ttl          time.Duration
	singleFlight bool
	logLevel     string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	var a *app

	rootCmd := &cobra.Command{
		Use:           "pagecache",
		Short:         "Fetch web pages through a Redis cache",
		Long:          "Fetches pages over HTTP, caches bodies in Redis under cache:<url> with a TTL and counts misses under count:<url>.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.redisAddr, "redis", "", "Redis address (overrides PAGECACHE_REDIS_ADDR)")
	pf.StringVar(&flags.redisPass, "redis-pass", "", "Redis password")
	pf.IntVar(&flags.redisDB, "redis-db", 0, "Redis database")
	pf.DurationVar(&flags.ttl, "ttl", 0, "Page lifetime (overrides PAGECACHE_TTL)")
	pf.BoolVar(&flags.singleFlight, "single-flight", false, "Collapse concurrent misses on the same URL")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cmd.Annotations[annotationNeedsApp] != "true" {
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, &cfg, flags)

		a, err = newApp(cmd.Context(), cfg)
		return err
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if a == nil {
			return nil
		}
		return a.Close(context.Background())
	}

	appFn := func() *app { return a }
	for _, cmd := range []*cobra.Command{
		getCmd(appFn),
		countCmd(appFn),
		demoCmd(appFn),
		serveCmd(appFn),
	} {
		cmd.Annotations = map[string]string{annotationNeedsApp: "true"}
		rootCmd.AddCommand(cmd)
	}

	return rootCmd
}

// applyFlags overrides environment configuration with explicitly set flags.
func applyFlags(cmd *cobra.Command, cfg *config.Config, flags rootFlags) {
	pf := cmd.Flags()
	if pf.Changed("redis") {
		cfg.Redis.Addr = flags.redisAddr
	}
	if pf.Changed("redis-pass") {
		cfg.Redis.Password = flags.redisPass
	}
	if pf.Changed("redis-db") {
		cfg.Redis.DB = flags.redisDB
	}
	if pf.Changed("ttl") {
		cfg.TTL = flags.ttl
	}
	if pf.Changed("single-flight") {
		cfg.SingleFlight = flags.singleFlight
	}
	if pf.Changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Setup(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})
	logger := logging.NewLogger("cli")

	tp, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	redisClient := cache.NewRedisClient(cache.RedisConfig{
		Addr:        cfg.Redis.Addr,
		Password:    cfg.Redis.Password,
		DB:          cfg.Redis.DB,
		DialTimeout: cfg.Redis.DialTimeout,
	})
	store := cache.NewRedisStore(redisClient)

	if err := store.Ping(ctx); err != nil {
		redisClient.Close()
		tp.Shutdown(ctx)
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
	}
	logger.Debug().Str("addr", cfg.Redis.Addr).Int("db", cfg.Redis.DB).Msg("Connected to Redis")

	fetcher, err := fetch.New(fetch.Config{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout,
		FailOnStatus: cfg.Fetch.FailOnStatus,
	})
	if err != nil {
		redisClient.Close()
		tp.Shutdown(ctx)
		return nil, fmt.Errorf("create fetcher: %w", err)
	}

	opts := []pagecache.Option{pagecache.WithTTL(cfg.TTL)}
	if cfg.SingleFlight {
		opts = append(opts, pagecache.WithSingleFlight())
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		fetcher: fetcher,
		pages:   pagecache.New(store, fetcher, opts...),
		tracing: tp,
	}, nil
}

// Close releases the Redis connection and flushes pending spans.
func (a *app) Close(ctx context.Context) error {
	var firstErr error
	if err := a.tracing.Shutdown(ctx); err != nil {
		firstErr = fmt.Errorf("shutdown tracing: %w", err)
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("close redis: %w", err)
	}
	return firstErr
}
