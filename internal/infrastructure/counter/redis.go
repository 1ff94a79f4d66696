package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pharmadesk/internal/core/numerator"
)

const defaultKeyPrefix = "pharmadesk:seq:"

var _ numerator.Counter = (*RedisCounter)(nil)

// Incrementer is the part of a redis client the counter needs.
type Incrementer interface {
	IncrBy(ctx context.Context, key string, value int64) *redis.IntCmd
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCounter keeps sequences as Redis integers.
type RedisCounter struct {
	client    Incrementer
	keyPrefix string
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisCounter creates a counter over client. An empty keyPrefix uses
// "pharmadesk:seq:".
func NewRedisCounter(client Incrementer, keyPrefix string) *RedisCounter {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisCounter{client: client, keyPrefix: keyPrefix}
}

// Next increments key by one.
func (c *RedisCounter) Next(ctx context.Context, key string) (int64, error) {
	return c.Reserve(ctx, key, 1)
}

// Reserve increments key by n with INCRBY.
func (c *RedisCounter) Reserve(ctx context.Context, key string, n int64) (int64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("reserve %q: size must be positive, got %d", key, n)
	}
	v, err := c.client.IncrBy(ctx, c.keyPrefix+key, n).Result()
	if err != nil {
		return 0, fmt.Errorf("reserve %q: %w", key, err)
	}
	return v, nil
}
