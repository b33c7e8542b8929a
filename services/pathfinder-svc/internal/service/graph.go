package service

import (
	"sort"

	"routeviz/pkg/domain"
	"routeviz/pkg/logger"
	"routeviz/pkg/metrics"
)

// GraphService прикладные операции над картой городов.
// Имена городов используются как есть, пустые имена игнорируются.
type GraphService struct {
	graph   *domain.Graph
	metrics *metrics.Metrics
}

// NewGraphService создаёт сервис поверх графа. nil означает новый пустой граф.
func NewGraphService(g *domain.Graph) *GraphService {
	if g == nil {
		g = domain.NewGraph()
	}
	return &GraphService{
		graph:   g,
		metrics: metrics.Get(),
	}
}

// Graph возвращает граф
func (s *GraphService) Graph() *domain.Graph {
	return s.graph
}

// ListCities возвращает имена городов в лексикографическом порядке
func (s *GraphService) ListCities() []string {
	names := s.graph.VertexNames()
	sort.Strings(names)
	return names
}

// AddCity добавляет город. Существующий город не меняется.
func (s *GraphService) AddCity(name string, x, y float64) bool {
	if name == "" || s.graph.HasVertex(name) {
		return false
	}

	s.graph.AddVertex(name, x, y)
	logger.Debug("city added", "city", name, "x", x, "y", y)
	return true
}

// RemoveCity удаляет город вместе с дорогами
func (s *GraphService) RemoveCity(name string) bool {
	if !s.graph.HasVertex(name) {
		return false
	}

	s.graph.RemoveVertex(name)
	logger.Debug("city removed", "city", name)
	return true
}

// SetCityPosition перемещает город или создаёт его в указанной точке
func (s *GraphService) SetCityPosition(name string, x, y float64) bool {
	if name == "" {
		return false
	}

	s.graph.SetVertexPosition(name, x, y)
	return true
}

// AddRoad добавляет двустороннюю дорогу
func (s *GraphService) AddRoad(a, b string, weight float64) bool {
	a, b, ok := roadEnds(a, b)
	if !ok {
		return false
	}

	s.graph.AddUndirectedEdge(a, b, weight)
	logger.Debug("road added", "from", a, "to", b, "weight", weight)
	return true
}

// RemoveRoad удаляет дорогу в обоих направлениях
func (s *GraphService) RemoveRoad(a, b string) bool {
	a, b, ok := roadEnds(a, b)
	if !ok {
		return false
	}

	s.graph.RemoveUndirectedEdge(a, b)
	return true
}

// AddOneWayRoad добавляет одностороннюю дорогу a->b
func (s *GraphService) AddOneWayRoad(a, b string, weight float64) bool {
	a, b, ok := roadEnds(a, b)
	if !ok {
		return false
	}

	s.graph.AddDirectedEdge(a, b, weight)
	logger.Debug("one-way road added", "from", a, "to", b, "weight", weight)
	return true
}

// RemoveOneWayRoad удаляет дугу a->b
func (s *GraphService) RemoveOneWayRoad(a, b string) bool {
	a, b, ok := roadEnds(a, b)
	if !ok {
		return false
	}

	s.graph.RemoveDirectedEdge(a, b)
	return true
}

// Stats считает статистику графа и обновляет метрики размера
func (s *GraphService) Stats() *domain.GraphStatistics {
	stats := domain.CalculateGraphStatistics(s.graph)
	s.metrics.RecordGraphSize(stats.VertexCount, stats.ArcCount)
	return stats
}

func roadEnds(a, b string) (string, string, bool) {
	if a == "" || b == "" || a == b {
		return "", "", false
	}
	return a, b, true
}
