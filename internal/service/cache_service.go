package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/escola-api/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheScope names one of the read caches kept in front of Postgres.
type CacheScope string

const (
	CacheSiteSettings CacheScope = "settings"
	CacheClassCatalog CacheScope = "classes"
	CacheWeeklyGrid   CacheScope = "schedule"
)

// Key addresses an entry of the scope. Without parts it addresses the full listing.
func (c CacheScope) Key(parts ...string) string {
	if len(parts) == 0 {
		return string(c) + ":all"
	}
	return string(c) + ":" + strings.Join(parts, ":")
}

func (c CacheScope) pattern() string {
	return string(c) + ":*"
}

// Weekly grids embed class names, so catalog changes clear them as well.
var cacheDependents = map[CacheScope][]CacheScope{
	CacheClassCatalog: {CacheWeeklyGrid},
}

// CacheService reads and writes the scoped caches and records per scope metrics.
// Backend failures are logged and degrade to cache misses.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	ttls       map[CacheScope]time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		repo:       repo,
		metrics:    metrics,
		defaultTTL: defaultTTL,
		// Settings change a few times a year.
		ttls:    map[CacheScope]time.Duration{CacheSiteSettings: 6 * defaultTTL},
		logger:  logger,
		enabled: enabled,
	}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// TTL returns how long entries of scope live.
func (s *CacheService) TTL(scope CacheScope) time.Duration {
	if ttl, ok := s.ttls[scope]; ok {
		return ttl
	}
	return s.defaultTTL
}

// Load reads the scope entry addressed by parts into dest and reports a hit.
func (s *CacheService) Load(ctx context.Context, scope CacheScope, dest interface{}, parts ...string) bool {
	if !s.Enabled() {
		return false
	}
	key := scope.Key(parts...)
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(string(scope), err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("cache", string(scope)), zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Store writes value as the scope entry addressed by parts.
func (s *CacheService) Store(ctx context.Context, scope CacheScope, value interface{}, parts ...string) {
	if !s.Enabled() {
		return
	}
	key := scope.Key(parts...)
	start := time.Now()
	err := s.repo.Set(ctx, key, value, s.TTL(scope))
	s.metrics.ObserveCacheWrite(string(scope), time.Since(start))
	if err != nil {
		s.logger.Warn("cache set failed", zap.String("cache", string(scope)), zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops every entry of scope and of the scopes derived from it.
func (s *CacheService) Invalidate(ctx context.Context, scope CacheScope) {
	if !s.Enabled() {
		return
	}
	for _, target := range append([]CacheScope{scope}, cacheDependents[scope]...) {
		if err := s.repo.DeleteByPattern(ctx, target.pattern()); err != nil {
			s.logger.Warn("cache invalidate failed", zap.String("cache", string(target)), zap.Error(err))
			continue
		}
		s.metrics.RecordCacheInvalidation(string(target))
	}
}
