package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Граф
	AttrGraphVertices = "graph.vertices"
	AttrGraphArcs     = "graph.arcs"
	AttrGraphVersion  = "graph.version"

	// Поиск
	AttrSearchID         = "search.id"
	AttrSearchSource     = "search.source"
	AttrSearchTarget     = "search.target"
	AttrSearchStrategy   = "search.strategy"
	AttrSearchTrace      = "search.trace"
	AttrSearchSteps      = "search.steps"
	AttrSearchCacheHit   = "search.cache_hit"
	AttrSearchTotal      = "search.total"
	AttrSearchPathLength = "search.path_length"
	AttrSearchReachable  = "search.reachable"

	// Данные и экспорт
	AttrDatasetDir    = "dataset.dir"
	AttrDatasetRows   = "dataset.rows"
	AttrExportFormat  = "export.format"
	AttrExportBytes   = "export.bytes"
	AttrOperationCode = "operation.code"
)

// GraphAttributes возвращает атрибуты графа
func GraphAttributes(vertices, arcs int, version uint64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphVertices, vertices),
		attribute.Int(AttrGraphArcs, arcs),
		attribute.Int64(AttrGraphVersion, int64(version)),
	}
}

// SearchAttributes возвращает атрибуты запроса поиска
func SearchAttributes(source, target, strategy, trace string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrSearchSource, source),
		attribute.String(AttrSearchTarget, target),
		attribute.String(AttrSearchStrategy, strategy),
		attribute.String(AttrSearchTrace, trace),
	}
}

// ResultAttributes возвращает атрибуты результата поиска.
// total < 0 означает недостижимую цель.
func ResultAttributes(steps, pathLength int, total float64, cacheHit bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrSearchSteps, steps),
		attribute.Int(AttrSearchPathLength, pathLength),
		attribute.Bool(AttrSearchCacheHit, cacheHit),
		attribute.Bool(AttrSearchReachable, total >= 0),
	}
	if total >= 0 {
		attrs = append(attrs, attribute.Float64(AttrSearchTotal, total))
	}
	return attrs
}

// ExportAttributes возвращает атрибуты экспорта
func ExportAttributes(format string, size int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrExportFormat, format),
		attribute.Int(AttrExportBytes, size),
	}
}
