package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Arpita030/deals-App/backend/services/deal-service/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryCache struct {
	mu     sync.Mutex
	items  map[string][]byte
	getErr error
}

func newMemoryCache() *memoryCache { return &memoryCache{items: map[string][]byte{}} }

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	v, ok := c.items[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *memoryCache) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

type countingRepo struct {
	DealRepository
	deals map[int64]*models.Deal
	finds int
}

func (r *countingRepo) FindByID(_ context.Context, id int64) (*models.Deal, error) {
	r.finds++
	d, ok := r.deals[id]
	if !ok {
		return nil, ErrDealNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *countingRepo) Update(_ context.Context, d *models.Deal) error {
	r.deals[d.ID] = d
	return nil
}

func (r *countingRepo) Delete(_ context.Context, id int64) error {
	delete(r.deals, id)
	return nil
}

func (r *countingRepo) DeactivateExpired(_ context.Context, _ time.Time) ([]int64, error) {
	return []int64{1}, nil
}

func newCountingRepo() *countingRepo {
	return &countingRepo{deals: map[int64]*models.Deal{1: {ID: 1, Title: "Deal 1", Active: true}}}
}

func TestCachedFindByID_ReadThrough(t *testing.T) {
	repo := newCountingRepo()
	cached := newCachedDealRepository(repo, newMemoryCache(), time.Minute, nil, zap.NewNop())

	for i := 0; i < 3; i++ {
		d, err := cached.FindByID(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "Deal 1", d.Title)
	}
	assert.Equal(t, 1, repo.finds)
}

func TestCachedFindByID_NotFoundIsNotCached(t *testing.T) {
	repo := newCountingRepo()
	cache := newMemoryCache()
	cached := newCachedDealRepository(repo, cache, time.Minute, nil, zap.NewNop())

	_, err := cached.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, ErrDealNotFound)
	assert.Empty(t, cache.items)
}

func TestCachedFindByID_CacheErrorFallsBack(t *testing.T) {
	repo := newCountingRepo()
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	cached := newCachedDealRepository(repo, cache, time.Minute, nil, zap.NewNop())

	d, err := cached.FindByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.ID)
}

func TestCachedUpdate_Evicts(t *testing.T) {
	repo := newCountingRepo()
	cached := newCachedDealRepository(repo, newMemoryCache(), time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	_, _ = cached.FindByID(ctx, 1)
	require.NoError(t, cached.Update(ctx, &models.Deal{ID: 1, Title: "Renamed", Active: true}))

	d, err := cached.FindByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", d.Title)
	assert.Equal(t, 2, repo.finds)
}

func TestCachedDeactivateExpired_Evicts(t *testing.T) {
	repo := newCountingRepo()
	cache := newMemoryCache()
	cached := newCachedDealRepository(repo, cache, time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	_, _ = cached.FindByID(ctx, 1)
	require.Contains(t, cache.items, "deal:1")

	_, err := cached.DeactivateExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.NotContains(t, cache.items, "deal:1")
}
