package weather

import (
	"context"

	"github.com/namefreezers/weather-etl/internal/config"
	"github.com/namefreezers/weather-etl/internal/weather/openweathermap"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BuildFetcher constructs the Fetcher used by the extractor:
// the OpenWeatherMap client, decorated with a Redis cache when
// cfg.RedisAddr is set and reachable. An unreachable Redis only disables the
// cache. The returned cleanup closes the Redis client.
func BuildFetcher(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Fetcher, func() error) {
	base := openweathermap.NewClient(cfg)
	noop := func() error { return nil }

	if cfg.RedisAddr == "" {
		logger.Debug("response cache disabled")
		return base, noop
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		logger.Warn("redis unavailable, response cache disabled",
			zap.String("redis_addr", cfg.RedisAddr),
			zap.Error(err),
		)
		return base, noop
	}

	logger.Info("response cache enabled",
		zap.String("redis_addr", cfg.RedisAddr),
		zap.Duration("ttl", cfg.CacheTTL),
	)
	return NewCachingFetcher(base, rdb, cfg.CacheTTL, logger), rdb.Close
}
