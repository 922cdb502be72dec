package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the connection settings for the Redis backend.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient creates a Redis client from cfg. Zero timeouts keep the
// go-redis defaults. The caller owns the client and must close it.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
}

// RedisStore implements Store with a Redis backend.
type RedisStore struct {
	redis *redis.Client
}

// NewRedisStore creates a new store on top of an existing Redis client.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
	}
}

// Get retrieves the value stored at key.
// Returns ErrCacheMiss if the key doesn't exist or has expired.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		StoreErrors.WithLabelValues("get").Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// SetWithExpiry stores value at key with the given TTL.
// Redis removes the key once the TTL elapses.
func (s *RedisStore) SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("%w (got %s)", ErrInvalidTTL, ttl)
	}

	if err := s.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		StoreErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	StoreWrittenBytes.Add(float64(len(value)))
	return nil
}

// Incr atomically increments the counter at key.
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	n, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		StoreErrors.WithLabelValues("incr").Inc()
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return n, nil
}

// Ping checks that Redis is reachable.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.redis.Close()
}
