package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeviz/pkg/apperror"
	"routeviz/pkg/cache"
	"routeviz/pkg/domain"
	"routeviz/services/pathfinder-svc/internal/engine"
)

func scenarioGraph() *domain.Graph {
	g := domain.NewGraph()
	g.AddUndirectedEdge("A", "B", 1)
	g.AddUndirectedEdge("B", "C", 2)
	g.AddUndirectedEdge("A", "C", 4)
	g.AddUndirectedEdge("C", "D", 1)
	return g
}

func newMemoryBackend(t *testing.T) *cache.MemoryCache {
	t.Helper()
	c := cache.NewMemoryCache(&cache.Options{DefaultTTL: time.Minute, MaxEntries: 100})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestFindShortestPath(t *testing.T) {
	svc := NewPathService(scenarioGraph(), DefaultSearchConfig(), nil)

	result, found, err := svc.FindShortestPath(context.Background(), "A", "D")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, []string{"A", "B", "C", "D"}, result.Path)
	require.NotNil(t, result.Total)
	assert.Equal(t, 4.0, *result.Total)
	assert.GreaterOrEqual(t, result.ElapsedMs, 0.0)
	assert.NotEmpty(t, result.SearchID)
	assert.False(t, result.CacheHit)
	assert.Len(t, result.Steps, 5)
}

func TestFindShortestPath_UnknownEndpoints(t *testing.T) {
	svc := NewPathService(scenarioGraph(), DefaultSearchConfig(), nil)

	for _, pair := range [][2]string{{"Z", "A"}, {"A", "Z"}, {"", ""}} {
		result, found, err := svc.FindShortestPath(context.Background(), pair[0], pair[1])
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, result)
	}
}

func TestFindShortestPath_SameSourceAndTarget(t *testing.T) {
	svc := NewPathService(scenarioGraph(), DefaultSearchConfig(), nil)

	result, found, err := svc.FindShortestPath(context.Background(), "C", "C")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, []string{"C"}, result.Path)
	require.NotNil(t, result.Total)
	assert.Equal(t, 0.0, *result.Total)
}

func TestFindShortestPath_Unreachable(t *testing.T) {
	g := scenarioGraph()
	g.AddVertex("E", 0, 0)
	svc := NewPathService(g, DefaultSearchConfig(), nil)

	result, found, err := svc.FindShortestPath(context.Background(), "A", "E")
	require.NoError(t, err)
	require.True(t, found)

	assert.Empty(t, result.Path)
	assert.Nil(t, result.Total)
	assert.True(t, math.IsInf(result.Distances["E"], 1))
}

func TestFindShortestPath_EngineErrors(t *testing.T) {
	g := scenarioGraph()
	g.AddDirectedEdge("D", "A", -2)

	svc := NewPathService(g, DefaultSearchConfig(), nil)
	_, found, err := svc.FindShortestPath(context.Background(), "A", "D")
	require.Error(t, err)
	assert.False(t, found)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidWeight))

	cfg := DefaultSearchConfig()
	cfg.MaxVertices = 2
	svc = NewPathService(scenarioGraph(), cfg, nil)
	_, _, err = svc.FindShortestPath(context.Background(), "A", "D")
	assert.True(t, apperror.Is(err, apperror.CodeGraphTooLarge))
}

func TestFindShortestPath_HeapStrategy(t *testing.T) {
	linear := NewPathService(scenarioGraph(), DefaultSearchConfig(), nil)
	heap := NewPathService(scenarioGraph(), SearchConfig{Strategy: engine.StrategyHeap}, nil)

	a, _, err := linear.FindShortestPath(context.Background(), "A", "D")
	require.NoError(t, err)
	b, _, err := heap.FindShortestPath(context.Background(), "A", "D")
	require.NoError(t, err)

	assert.Equal(t, a.Steps, b.Steps)
	assert.Equal(t, engine.StrategyHeap, b.Strategy)
}

func TestFindShortestPath_Cache(t *testing.T) {
	g := scenarioGraph()
	sc := NewSearchCache(newMemoryBackend(t), "routeviz:", time.Minute)
	svc := NewPathService(g, DefaultSearchConfig(), sc)
	ctx := context.Background()

	first, _, err := svc.FindShortestPath(ctx, "A", "D")
	require.NoError(t, err)
	assert.False(t, first.CacheHit)

	second, _, err := svc.FindShortestPath(ctx, "A", "D")
	require.NoError(t, err)
	assert.True(t, second.CacheHit)
	assert.Equal(t, first.Path, second.Path)
	assert.Equal(t, *first.Total, *second.Total)
	assert.Len(t, second.Steps, len(first.Steps))
	assert.NotEqual(t, first.SearchID, second.SearchID)

	// Изменение графа меняет хеш и ключ
	g.AddUndirectedEdge("A", "D", 1)
	third, _, err := svc.FindShortestPath(ctx, "A", "D")
	require.NoError(t, err)
	assert.False(t, third.CacheHit)
	assert.Equal(t, []string{"A", "D"}, third.Path)
}

func TestFindShortestPath_CacheKeepsInfinity(t *testing.T) {
	g := scenarioGraph()
	g.AddVertex("E", 0, 0)
	sc := NewSearchCache(newMemoryBackend(t), "p:", time.Minute)
	svc := NewPathService(g, DefaultSearchConfig(), sc)
	ctx := context.Background()

	_, _, err := svc.FindShortestPath(ctx, "A", "E")
	require.NoError(t, err)

	cached, _, err := svc.FindShortestPath(ctx, "A", "E")
	require.NoError(t, err)
	require.True(t, cached.CacheHit)
	assert.True(t, math.IsInf(cached.Distances["E"], 1))
	assert.Nil(t, cached.Total)
}

// failingCache бэкенд, который всегда возвращает ошибку
type failingCache struct{}

var errBackendDown = errors.New("backend down")

func (failingCache) Get(context.Context, string) ([]byte, error) { return nil, errBackendDown }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errBackendDown
}
func (failingCache) Delete(context.Context, string) error         { return errBackendDown }
func (failingCache) Exists(context.Context, string) (bool, error) { return false, errBackendDown }
func (failingCache) DeleteByPattern(context.Context, string) (int64, error) {
	return 0, errBackendDown
}
func (failingCache) Stats(context.Context) (*cache.Stats, error) { return nil, errBackendDown }
func (failingCache) Clear(context.Context) error                 { return errBackendDown }
func (failingCache) Close() error                                { return nil }

func TestFindShortestPath_CacheErrorsAreNotFatal(t *testing.T) {
	sc := NewSearchCache(failingCache{}, "p:", time.Minute)
	svc := NewPathService(scenarioGraph(), DefaultSearchConfig(), sc)

	result, found, err := svc.FindShortestPath(context.Background(), "A", "D")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, result.CacheHit)
	assert.Equal(t, 4.0, *result.Total)
}

func TestSearchCache_InvalidateAll(t *testing.T) {
	backend := newMemoryBackend(t)
	sc := NewSearchCache(backend, "p:", time.Minute)
	ctx := context.Background()

	key := SearchKey{Strategy: engine.StrategyLinear, Trace: engine.TraceFull, GraphHash: "h", Source: "A", Target: "B"}
	sc.Set(ctx, key, &engine.Result{Source: "A", Path: []string{}})

	_, ok := sc.Get(ctx, key)
	require.True(t, ok)

	n, err := sc.InvalidateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok = sc.Get(ctx, key)
	assert.False(t, ok)
}

func TestSearchKey_String(t *testing.T) {
	key := SearchKey{Strategy: engine.StrategyHeap, Trace: engine.TraceNone, GraphHash: "abc", Source: "A", Target: "B"}
	assert.Equal(t, `search:heap:none:abc:"A":"B"`, key.String())
}

func TestFindShortestPath_CacheSeparatesNamesWithColons(t *testing.T) {
	g := domain.NewGraph()
	g.AddUndirectedEdge("A:B", "C", 1)
	g.AddUndirectedEdge("A", "B:C", 7)
	sc := NewSearchCache(newMemoryBackend(t), "p:", time.Minute)
	svc := NewPathService(g, DefaultSearchConfig(), sc)
	ctx := context.Background()

	first, found, err := svc.FindShortestPath(ctx, "A:B", "C")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []string{"A:B", "C"}, first.Path)

	second, found, err := svc.FindShortestPath(ctx, "A", "B:C")
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, second.CacheHit)
	assert.Equal(t, "A", second.Source)
	assert.Equal(t, []string{"A", "B:C"}, second.Path)
	require.NotNil(t, second.Total)
	assert.Equal(t, 7.0, *second.Total)
}
