package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "watchface:"

var (
	// ErrMiss is returned when the key is absent or expired.
	ErrMiss = errors.New("cache miss")
	// ErrCodec marks a value that could not be encoded or decoded.
	ErrCodec = errors.New("cache codec")
)

// RedisClient stores JSON values under keys namespaced for the relay.
// Every write carries the same TTL.
type RedisClient[T any] struct {
	client redis.Cmdable
	logger zerolog.Logger
	ttl    time.Duration
}

func NewRedisClient[T any](client redis.Cmdable, logger zerolog.Logger, ttl time.Duration) *RedisClient[T] {
	return &RedisClient[T]{
		client: client,
		logger: logger.With().Str("component", "RedisClient").Logger(),
		ttl:    ttl,
	}
}

func (c *RedisClient[T]) Set(ctx context.Context, key string, value T) error {
	data, err := encode(value)
	if err != nil {
		c.logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("refusing to cache value")
		return err
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("redis SET failed")
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	c.logger.Debug().Ctx(ctx).Str("key", key).Dur("ttl", c.ttl).Msg("value cached")
	return nil
}

//nolint:ireturn
func (c *RedisClient[T]) Get(ctx context.Context, key string) (T, error) {
	var zero T

	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return zero, ErrMiss
	case err != nil:
		c.logger.Error().Ctx(ctx).Err(err).Str("key", key).Msg("redis GET failed")
		return zero, fmt.Errorf("redis get %s: %w", key, err)
	}

	value, err := decode[T](data)
	if err != nil {
		c.logger.Warn().Ctx(ctx).Err(err).Str("key", key).Msg("dropping unreadable cache entry")
		return zero, err
	}
	return value, nil
}

func encode[T any](value T) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	return data, nil
}

func decode[T any](data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("%w: %w", ErrCodec, err)
	}
	return value, nil
}
