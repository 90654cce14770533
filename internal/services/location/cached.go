package location

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/watchface-weather-relay/internal/models"
)

const positionKey = "location:current"

type locator interface {
	Current(ctx context.Context) (models.Position, error)
}

type cacheClient[T any] interface {
	Set(ctx context.Context, key string, value T) error
	Get(ctx context.Context, key string) (T, error)
}

// CachedLocator reuses a fix no older than maxAge; zero maxAge always asks inner.
type CachedLocator struct {
	inner  locator
	cache  cacheClient[models.Position]
	maxAge time.Duration
	logger zerolog.Logger
	now    func() time.Time
}

func NewCachedLocator(
	inner locator,
	cache cacheClient[models.Position],
	maxAge time.Duration,
	logger zerolog.Logger,
) *CachedLocator {
	return &CachedLocator{
		inner:  inner,
		cache:  cache,
		maxAge: maxAge,
		logger: logger.With().Str("component", "CachedLocator").Logger(),
		now:    time.Now,
	}
}

func (c *CachedLocator) Current(ctx context.Context) (models.Position, error) {
	if c.maxAge > 0 {
		pos, err := c.cache.Get(ctx, positionKey)
		if err == nil && pos.Age(c.now()) <= c.maxAge {
			c.logger.Debug().
				Ctx(ctx).
				Dur("age", pos.Age(c.now())).
				Msg("reusing cached position")
			return pos, nil
		}
		c.logger.Debug().
			Ctx(ctx).
			Err(err).
			Msg("no usable cached position")
	}

	pos, err := c.inner.Current(ctx)
	if err != nil {
		return models.Position{}, err
	}

	if c.maxAge > 0 {
		if err := c.cache.Set(ctx, positionKey, pos); err != nil {
			c.logger.Error().
				Ctx(ctx).
				Err(err).
				Msg("cache set failed")
		}
	}

	return pos, nil
}
