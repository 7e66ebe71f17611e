package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type brokenCacheRepo struct{}

func (brokenCacheRepo) Get(context.Context, string, interface{}) error {
	return errors.New("connection reset")
}

func (brokenCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection reset")
}

func (brokenCacheRepo) DeleteByPattern(context.Context, string) error {
	return errors.New("connection reset")
}

func TestCacheScopeKeys(t *testing.T) {
	assert.Equal(t, "classes:all", CacheClassCatalog.Key())
	assert.Equal(t, "settings:site", CacheSiteSettings.Key("site"))
	assert.Equal(t, "schedule:student:s-1", CacheWeeklyGrid.Key("student", "s-1"))
	assert.Equal(t, "schedule:*", CacheWeeklyGrid.pattern())
}

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(newMemCacheRepo(), metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var got []string
	assert.False(t, cache.Load(ctx, CacheClassCatalog, &got))

	cache.Store(ctx, CacheClassCatalog, []string{"Piano"})
	require.True(t, cache.Load(ctx, CacheClassCatalog, &got))
	assert.Equal(t, []string{"Piano"}, got)

	cache.Invalidate(ctx, CacheClassCatalog)
	assert.False(t, cache.Load(ctx, CacheClassCatalog, &got))

	snap := metrics.Snapshot()
	assert.EqualValues(t, 1, snap.CacheHits)
	assert.EqualValues(t, 2, snap.CacheMisses)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `cache_lookups_total{cache="classes",result="hit"} 1`)
	assert.Contains(t, rec.Body.String(), `cache_invalidations_total{cache="schedule"} 1`)
}

func TestCacheCatalogInvalidationClearsWeeklyGrid(t *testing.T) {
	repo := newMemCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	cache.Store(ctx, CacheClassCatalog, []string{"Piano"})
	cache.Store(ctx, CacheWeeklyGrid, map[string]int{"slots": 1})
	cache.Store(ctx, CacheSiteSettings, "Escola", "site")

	cache.Invalidate(ctx, CacheClassCatalog)
	assert.NotContains(t, repo.entries, CacheClassCatalog.Key())
	assert.NotContains(t, repo.entries, CacheWeeklyGrid.Key())
	assert.Contains(t, repo.entries, CacheSiteSettings.Key("site"))

	cache.Store(ctx, CacheWeeklyGrid, map[string]int{"slots": 2})
	cache.Store(ctx, CacheClassCatalog, []string{"Piano"})
	cache.Invalidate(ctx, CacheWeeklyGrid)
	assert.Contains(t, repo.entries, CacheClassCatalog.Key())
}

func TestCacheSettingsLiveLonger(t *testing.T) {
	cache := NewCacheService(newMemCacheRepo(), nil, time.Minute, nil, true)
	assert.Equal(t, time.Minute, cache.TTL(CacheClassCatalog))
	assert.Equal(t, 6*time.Minute, cache.TTL(CacheSiteSettings))
}

func TestCacheServiceDisabledIsNoop(t *testing.T) {
	repo := newMemCacheRepo()
	cache := NewCacheService(repo, nil, 0, zap.NewNop(), false)
	ctx := context.Background()

	assert.False(t, cache.Enabled())
	cache.Store(ctx, CacheSiteSettings, "x", "site")
	assert.Empty(t, repo.entries)

	var nilCache *CacheService
	assert.False(t, nilCache.Load(ctx, CacheSiteSettings, new(string), "site"))
	assert.NotPanics(t, func() { nilCache.Invalidate(ctx, CacheClassCatalog) })
}

func TestCacheServiceDegradesOnBackendErrors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	metrics := NewMetricsService()
	cache := NewCacheService(brokenCacheRepo{}, metrics, time.Minute, zap.New(core), true)
	ctx := context.Background()

	assert.False(t, cache.Load(ctx, CacheWeeklyGrid, new(string)))
	cache.Store(ctx, CacheWeeklyGrid, "v")
	cache.Invalidate(ctx, CacheClassCatalog)

	assert.Equal(t, 1, logs.FilterMessage("cache get failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("cache set failed").Len())
	assert.Equal(t, 2, logs.FilterMessage("cache invalidate failed").Len())
	assert.EqualValues(t, 1, metrics.Snapshot().CacheMisses)
}
