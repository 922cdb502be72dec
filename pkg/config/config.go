// Package config loads pagecache settings from PAGECACHE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the process configuration for the pagecache binaries.
// The library packages never read it directly; main wires it in.
type Config struct {
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	Fetch   FetchConfig   `envPrefix:"FETCH_"`
	Tracing TracingConfig `envPrefix:"TRACING_"`

	// TTL is the page lifetime
	TTL time.Duration `env:"TTL" envDefault:"10s"`

	// SingleFlight collapses concurrent misses on the same URL
	SingleFlight bool `env:"SINGLE_FLIGHT" envDefault:"false"`

	// MaxConcurrency bounds parallel fetches for multi-URL commands
	MaxConcurrency int `env:"MAX_CONCURRENCY" envDefault:"5"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty  bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr        string        `env:"ADDR" envDefault:"localhost:6379"`
	Password    string        `env:"PASSWORD"`
	DB          int           `env:"DB" envDefault:"0"`
	DialTimeout time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
}

// FetchConfig holds the origin fetch settings.
type FetchConfig struct {
	UserAgent    string        `env:"USER_AGENT" envDefault:"pagecache/0.1.0"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"30s"`
	FailOnStatus bool          `env:"FAIL_ON_STATUS" envDefault:"false"`
}

// TracingConfig holds the OpenTelemetry exporter settings.
type TracingConfig struct {
	Enabled     bool    `env:"ENABLED" envDefault:"false"`
	Endpoint    string  `env:"ENDPOINT" envDefault:"localhost:4318"`
	ServiceName string  `env:"SERVICE_NAME" envDefault:"pagecache"`
	SampleRate  float64 `env:"SAMPLE_RATE" envDefault:"1.0"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	return LoadWithEnvironment(nil)
}

// LoadWithEnvironment parses environment into a Config. A nil map reads the
// process environment.
func LoadWithEnvironment(environment map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{Prefix: "PAGECACHE_"}
	if environment != nil {
		opts.Environment = environment
	}

	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting, joined into one error.
func (c Config) Validate() error {
	var errs []error

	if c.TTL <= 0 {
		errs = append(errs, fmt.Errorf("ttl must be positive (got %s)", c.TTL))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch timeout must be positive (got %s)", c.Fetch.Timeout))
	}
	if c.Fetch.UserAgent == "" {
		errs = append(errs, errors.New("user-agent is required"))
	}
	if c.MaxConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("max concurrency must be positive (got %d)", c.MaxConcurrency))
	}
	if c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis address is required"))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing sample rate must be within [0, 1] (got %g)", c.Tracing.SampleRate))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
