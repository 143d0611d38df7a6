package weather

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/namefreezers/weather-etl/internal/weather/types"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "weather-etl:raw:"

// CachingFetcher decorates another Fetcher with a short-lived Redis cache of
// raw API responses. Cache errors never fail a fetch; they are logged and the
// inner Fetcher is used instead.
type CachingFetcher struct {
	inner  Fetcher
	redis  redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachingFetcher returns a Fetcher that first looks in Redis,
// falling back to inner on cache-miss.
func NewCachingFetcher(inner Fetcher, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachingFetcher {
	return &CachingFetcher{inner: inner, redis: rdb, ttl: ttl, logger: logger}
}

func cacheKey(city string) string {
	return cacheKeyPrefix + strings.ToLower(strings.TrimSpace(city))
}

func (c *CachingFetcher) FetchCurrent(ctx context.Context, city string) (types.RawRecord, error) {
	key := cacheKey(city)

	raw, err := c.redis.Get(ctx, key).Result()
	if err == nil {
		var rec types.RawRecord
		if uerr := json.Unmarshal([]byte(raw), &rec); uerr == nil {
			c.logger.Debug("cache hit", zap.String("city", city))
			return rec, nil
		} else {
			c.logger.Warn("cache unmarshal failed", zap.String("city", city), zap.Error(uerr))
		}
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("redis GET failed", zap.String("city", city), zap.Error(err))
	}

	rec, err := c.inner.FetchCurrent(ctx, city)
	if err != nil {
		return rec, err
	}

	blob, merr := json.Marshal(rec)
	if merr != nil {
		c.logger.Warn("json marshal failed", zap.Error(merr))
	} else if serr := c.redis.Set(ctx, key, blob, c.ttl).Err(); serr != nil {
		c.logger.Warn("redis SET failed", zap.String("city", city), zap.Error(serr))
	}

	return rec, nil
}
