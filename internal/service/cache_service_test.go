package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) DeleteByPattern(context.Context, string) error {
	return errors.New("redis down")
}

func TestMakeAnalyticsCacheKey(t *testing.T) {
	assert.Equal(t, "analytics:user:u1:average", makeAnalyticsCacheKey("user", "u1", "average"))
	assert.Equal(t, "analytics:user:a|b", makeAnalyticsCacheKey("user", "", "a:b"))
}

func TestCachedComputesOnceThenHits(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(&stubCacheRepo{}, metrics, time.Minute, zap.NewNop(), true)
	calls := 0
	compute := func(context.Context) ([]int, error) {
		calls++
		return []int{1, 2, 3}, nil
	}

	value, hit, err := cached(context.Background(), cache, "analytics:k", compute)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, []int{1, 2, 3}, value)

	value, hit, err = cached(context.Background(), cache, "analytics:k", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []int{1, 2, 3}, value)
	assert.Equal(t, 1, calls)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
}

func TestCachedDegradesWhenCacheFails(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.NewNop(), true)

	value, hit, err := cached(context.Background(), cache, "analytics:k", func(context.Context) (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "fresh", value)
}

func TestCachedDoesNotStoreErrors(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)

	_, _, err := cached(context.Background(), cache, "analytics:k", func(context.Context) (string, error) {
		return "", assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, repo.has("analytics:k"))
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)

	require.NoError(t, cache.Set(context.Background(), "analytics:k", 1, 0))
	assert.False(t, repo.has("analytics:k"))
	hit, err := cache.Get(context.Background(), "analytics:k", new(int))
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCacheServiceInvalidateUser(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	require.NoError(t, cache.Set(context.Background(), "analytics:user:u1:average", 1, 0))

	require.NoError(t, cache.InvalidateUser(context.Background(), "u1"))
	assert.False(t, repo.has("analytics:user:u1:average"))

	failing := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	assert.Error(t, failing.InvalidateUser(context.Background(), "u1"))
}
