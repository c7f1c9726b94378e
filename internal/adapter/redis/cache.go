package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/couchcryptid/nexrain-service/internal/config"
	"github.com/couchcryptid/nexrain-service/internal/domain"
	"github.com/couchcryptid/nexrain-service/internal/observability"
)

const keyPrefix = "nexrain:points:"

// PointQuerier is the query surface being cached.
type PointQuerier interface {
	DistinctPoints(ctx context.Context, pointType string) (domain.PointList, error)
	RecentReadings(ctx context.Context, point string, limit int) (domain.RecentReadings, error)
}

// kv is the subset of the Redis client used by the cache.
type kv interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// NewClient creates a Redis client from the cache settings.
func NewClient(cfg *config.Config) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

// CachedService wraps a PointQuerier with a Redis cache for point lists.
// Readings are never cached. Redis failures degrade to a direct query.
type CachedService struct {
	inner   PointQuerier
	rdb     kv
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCachedService creates a cache decorator around inner.
func NewCachedService(inner PointQuerier, rdb *goredis.Client, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *CachedService {
	return newCachedService(inner, rdb, ttl, logger, metrics)
}

func newCachedService(inner PointQuerier, rdb kv, ttl time.Duration, logger *slog.Logger, metrics *observability.Metrics) *CachedService {
	return &CachedService{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// DistinctPoints serves point lists from Redis when present, otherwise from
// inner, caching non-empty results for the configured TTL.
func (c *CachedService) DistinctPoints(ctx context.Context, pointType string) (domain.PointList, error) {
	key := cacheKey(pointType)

	if list, ok := c.get(ctx, key); ok {
		return list, nil
	}

	list, err := c.inner.DistinctPoints(ctx, pointType)
	if err != nil {
		return list, err
	}
	// Empty lists are not cached so a freshly loaded store shows up immediately.
	if list.Count > 0 {
		c.put(ctx, key, list)
	}
	return list, nil
}

// RecentReadings always queries inner; readings are never cached.
func (c *CachedService) RecentReadings(ctx context.Context, point string, limit int) (domain.RecentReadings, error) {
	return c.inner.RecentReadings(ctx, point, limit)
}

func (c *CachedService) get(ctx context.Context, key string) (domain.PointList, bool) {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		c.metrics.PointsCache.WithLabelValues("miss").Inc()
		return domain.PointList{}, false
	}
	if err != nil {
		c.metrics.PointsCache.WithLabelValues("error").Inc()
		c.logger.Warn("points cache read failed", "key", key, "error", err)
		return domain.PointList{}, false
	}

	var list domain.PointList
	if err := json.Unmarshal(data, &list); err != nil {
		c.metrics.PointsCache.WithLabelValues("error").Inc()
		c.logger.Warn("points cache entry corrupt", "key", key, "error", err)
		return domain.PointList{}, false
	}
	c.metrics.PointsCache.WithLabelValues("hit").Inc()
	return domain.NewPointList(list.Items), true
}

func (c *CachedService) put(ctx context.Context, key string, list domain.PointList) {
	data, err := json.Marshal(list)
	if err != nil {
		c.logger.Warn("points cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("points cache write failed", "key", key, "error", err)
	}
}

func cacheKey(pointType string) string {
	if pointType == "" {
		return keyPrefix + "all"
	}
	return keyPrefix + pointType
}
