package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"routeviz/pkg/apperror"
	"routeviz/pkg/cache"
	"routeviz/pkg/domain"
	"routeviz/pkg/logger"
	"routeviz/pkg/metrics"
	"routeviz/pkg/telemetry"
	"routeviz/services/pathfinder-svc/internal/engine"
)

const searchOperation = "search"

// SearchConfig параметры поиска
type SearchConfig struct {
	Strategy    engine.Strategy
	Trace       engine.TraceMode
	MaxVertices int
}

// DefaultSearchConfig линейный выбор с полной трассой
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		Strategy: engine.StrategyLinear,
		Trace:    engine.TraceFull,
	}
}

// SearchResult результат поиска с замером времени
type SearchResult struct {
	*engine.Result

	SearchID  string  `json:"search_id"`
	ElapsedMs float64 `json:"elapsed_ms"`
	CacheHit  bool    `json:"cache_hit"`
}

// PathService поиск кратчайшего пути с замером времени
type PathService struct {
	graph   *domain.Graph
	cfg     SearchConfig
	cache   *SearchCache
	metrics *metrics.Metrics
	tracker *metrics.OperationTracker
}

// NewPathService создаёт сервис поиска. searchCache может быть nil.
func NewPathService(g *domain.Graph, cfg SearchConfig, searchCache *SearchCache) *PathService {
	if cfg.Strategy == "" {
		cfg.Strategy = engine.StrategyLinear
	}
	if cfg.Trace == "" {
		cfg.Trace = engine.TraceFull
	}

	m := metrics.Get()
	return &PathService{
		graph:   g,
		cfg:     cfg,
		cache:   searchCache,
		metrics: m,
		tracker: metrics.NewOperationTracker(m.OperationsInFlight),
	}
}

// FindShortestPath ищет кратчайший путь от source до target.
//
// Если хотя бы одного из городов нет в графе, возвращается (nil, false, nil).
// Ошибка означает отказ алгоритма: недопустимый вес, слишком большой граф.
func (s *PathService) FindShortestPath(ctx context.Context, source, target string) (*SearchResult, bool, error) {
	searchID := uuid.NewString()
	ctx = logger.ContextWithSearchID(ctx, searchID)
	log := logger.WithContext(ctx, "source", source, "target", target)

	ctx, span := telemetry.StartSpan(ctx, "PathService.FindShortestPath",
		telemetry.WithAttributes(telemetry.SearchAttributes(source, target, string(s.cfg.Strategy), string(s.cfg.Trace))...),
	)
	defer span.End()
	span.SetAttributes(telemetry.GraphAttributes(s.graph.VertexCount(), s.graph.ArcCount(), s.graph.Version())...)

	s.tracker.Start(searchOperation)
	defer s.tracker.End(searchOperation)

	start := time.Now()
	strategy := string(s.cfg.Strategy)

	snap := s.graph.Snapshot()
	if !snap.Has(source) || !snap.Has(target) {
		log.Debug("search endpoint not found")
		s.metrics.RecordSearch(strategy, metrics.OutcomeNotFound, false, time.Since(start), 0)
		return nil, false, nil
	}

	key := SearchKey{
		Strategy: s.cfg.Strategy,
		Trace:    s.cfg.Trace,
		Source:   source,
		Target:   target,
	}

	var (
		result   *engine.Result
		cacheHit bool
	)
	if s.cache != nil {
		key.GraphHash = cache.GraphHash(snap)
		result, cacheHit = s.cache.Get(ctx, key)
	}

	if !cacheHit {
		var err error
		result, err = engine.RunOnSnapshot(snap, source,
			engine.WithTarget(target),
			engine.WithStrategy(s.cfg.Strategy),
			engine.WithTrace(s.cfg.Trace),
			engine.WithMaxVertices(s.cfg.MaxVertices),
		)
		if err != nil {
			telemetry.SetError(ctx, err)
			log.Warn("search failed", "error", err, "code", apperror.Code(err))
			s.metrics.RecordSearch(strategy, metrics.OutcomeError, false, time.Since(start), 0)
			return nil, false, err
		}

		if source == target {
			zero := 0.0
			result.Path = []string{source}
			result.Total = &zero
		}

		s.metrics.RecordRelaxations(result.Relaxations.Improved, result.Relaxations.Skipped)
		if s.cache != nil {
			s.cache.Set(ctx, key, result)
		}
	}

	elapsed := time.Since(start)
	sr := &SearchResult{
		Result:    result,
		SearchID:  searchID,
		ElapsedMs: float64(elapsed.Microseconds()) / 1000,
		CacheHit:  cacheHit,
	}

	outcome := metrics.OutcomeUnreachable
	total := -1.0
	if result.Total != nil {
		outcome = metrics.OutcomeFound
		total = *result.Total
	}
	s.metrics.RecordSearch(strategy, outcome, cacheHit, elapsed, len(result.Steps))
	span.SetAttributes(telemetry.ResultAttributes(len(result.Steps), len(result.Path), total, cacheHit)...)

	log.Info("search completed",
		"outcome", outcome,
		"steps", len(result.Steps),
		"elapsed_ms", sr.ElapsedMs,
		"cache_hit", cacheHit,
	)

	return sr, true, nil
}

// Config возвращает параметры поиска
func (s *PathService) Config() SearchConfig {
	return s.cfg
}
