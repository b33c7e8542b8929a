package service

import (
	"context"
	"time"

	"routeviz/pkg/cache"
	"routeviz/pkg/logger"
	"routeviz/pkg/metrics"
	"routeviz/services/pathfinder-svc/internal/engine"
)

// Операции кэша для метрик
const (
	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheSet   = "set"
	cacheError = "error"
)

// SearchKey параметры, от которых зависит результат поиска
type SearchKey struct {
	Strategy  engine.Strategy
	Trace     engine.TraceMode
	GraphHash string
	Source    string
	Target    string
}

// String возвращает ключ кэша
func (k SearchKey) String() string {
	return cache.BuildSearchKey(string(k.Strategy), string(k.Trace), k.GraphHash, k.Source, k.Target)
}

// SearchCache кэш результатов поиска.
// Ошибки бэкенда логируются и считаются промахом.
type SearchCache struct {
	results *cache.Typed[engine.Result]
	metrics *metrics.Metrics
}

// NewSearchCache создаёт кэш результатов поверх бэкенда
func NewSearchCache(backend cache.Cache, prefix string, ttl time.Duration) *SearchCache {
	return &SearchCache{
		results: cache.NewTyped[engine.Result](backend, prefix, ttl),
		metrics: metrics.Get(),
	}
}

// Get возвращает результат из кэша
func (c *SearchCache) Get(ctx context.Context, key SearchKey) (*engine.Result, bool) {
	result, found, err := c.results.Get(ctx, key.String())
	if err != nil {
		logger.WithContext(ctx).Warn("search cache read failed", "key", key.String(), "error", err)
		c.metrics.RecordCacheOperation(cacheError)
		return nil, false
	}
	if !found {
		c.metrics.RecordCacheOperation(cacheMiss)
		return nil, false
	}

	c.metrics.RecordCacheOperation(cacheHit)
	return result, true
}

// Set сохраняет результат
func (c *SearchCache) Set(ctx context.Context, key SearchKey, result *engine.Result) {
	if err := c.results.Set(ctx, key.String(), result); err != nil {
		logger.WithContext(ctx).Warn("search cache write failed", "key", key.String(), "error", err)
		c.metrics.RecordCacheOperation(cacheError)
		return
	}
	c.metrics.RecordCacheOperation(cacheSet)
}

// InvalidateAll удаляет все результаты поиска
func (c *SearchCache) InvalidateAll(ctx context.Context) (int64, error) {
	return c.results.Invalidate(ctx, cache.SearchPattern)
}
