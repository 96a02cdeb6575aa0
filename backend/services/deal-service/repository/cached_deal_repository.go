package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	awspkg "github.com/Arpita030/deals-App/backend/pkg/aws"
	"github.com/Arpita030/deals-App/backend/services/deal-service/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var errCacheMiss = errors.New("cache miss")

type dealCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type redisCache struct {
	client *redis.Client
}

func (c redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, errCacheMiss
	}
	return b, err
}

func (c redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c redisCache) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

// NewRedisClient parses redisURL and pings the server.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CachedDealRepository serves FindByID from Redis and keeps entries in step
// with writes. Cache failures fall back to the wrapped repository.
type CachedDealRepository struct {
	DealRepository
	cache   dealCache
	ttl     time.Duration
	metrics *awspkg.MetricsClient
	logger  *zap.Logger
}

func NewCachedDealRepository(repo DealRepository, client *redis.Client, ttl time.Duration, metrics *awspkg.MetricsClient, logger *zap.Logger) *CachedDealRepository {
	return newCachedDealRepository(repo, redisCache{client: client}, ttl, metrics, logger)
}

func newCachedDealRepository(repo DealRepository, cache dealCache, ttl time.Duration, metrics *awspkg.MetricsClient, logger *zap.Logger) *CachedDealRepository {
	return &CachedDealRepository{DealRepository: repo, cache: cache, ttl: ttl, metrics: metrics, logger: logger}
}

func dealKey(id int64) string {
	return fmt.Sprintf("deal:%d", id)
}

func (r *CachedDealRepository) FindByID(ctx context.Context, id int64) (*models.Deal, error) {
	key := dealKey(id)

	data, err := r.cache.Get(ctx, key)
	switch {
	case err == nil:
		var deal models.Deal
		if jsonErr := json.Unmarshal(data, &deal); jsonErr == nil {
			r.count(ctx, awspkg.MetricCacheHits)
			return &deal, nil
		}
		r.logger.Warn("discarding undecodable cached deal", zap.String("key", key))
	case !errors.Is(err, errCacheMiss):
		r.logger.Warn("deal cache read failed", zap.String("key", key), zap.Error(err))
	}
	r.count(ctx, awspkg.MetricCacheMisses)

	deal, err := r.DealRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(deal); err == nil {
		if err := r.cache.Set(ctx, key, data, r.ttl); err != nil {
			r.logger.Warn("deal cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return deal, nil
}

func (r *CachedDealRepository) Update(ctx context.Context, deal *models.Deal) error {
	if err := r.DealRepository.Update(ctx, deal); err != nil {
		return err
	}
	r.evict(ctx, deal.ID)
	return nil
}

func (r *CachedDealRepository) Delete(ctx context.Context, id int64) error {
	if err := r.DealRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *CachedDealRepository) DeactivateExpired(ctx context.Context, now time.Time) ([]int64, error) {
	ids, err := r.DealRepository.DeactivateExpired(ctx, now)
	if err != nil {
		return nil, err
	}
	r.evict(ctx, ids...)
	return ids, nil
}

func (r *CachedDealRepository) evict(ctx context.Context, ids ...int64) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = dealKey(id)
	}
	if err := r.cache.Del(ctx, keys...); err != nil {
		r.logger.Warn("deal cache eviction failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (r *CachedDealRepository) count(ctx context.Context, metric string) {
	if r.metrics.IsEnabled() {
		_ = r.metrics.RecordCount(ctx, metric, map[string]string{"Service": "deal-service"})
	}
}
