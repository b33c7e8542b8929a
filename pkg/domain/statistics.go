package domain

// GraphStatistics статистика графа
type GraphStatistics struct {
	VertexCount      int     `json:"vertexCount"`
	ArcCount         int     `json:"arcCount"`
	EdgeLogSize      int     `json:"edgeLogSize"`
	IsolatedCount    int     `json:"isolatedCount"`
	ComponentCount   int     `json:"componentCount"`
	TotalWeight      float64 `json:"totalWeight"`
	AverageWeight    float64 `json:"averageWeight"`
	Density          float64 `json:"density"`
	AverageOutDegree float64 `json:"averageOutDegree"`
	MaxOutDegree     int     `json:"maxOutDegree"`
	IsConnected      bool    `json:"isConnected"`
}

// CalculateGraphStatistics вычисляет статистику графа
func CalculateGraphStatistics(g *Graph) *GraphStatistics {
	s := g.Snapshot()

	stats := &GraphStatistics{
		VertexCount: s.Len(),
		ArcCount:    s.ArcCount(),
		EdgeLogSize: len(g.Edges()),
	}

	inDegree := make(map[string]int, s.Len())
	for i := 0; i < s.Len(); i++ {
		adj := s.Neighbors(i)
		if len(adj) > stats.MaxOutDegree {
			stats.MaxOutDegree = len(adj)
		}
		for _, nb := range adj {
			stats.TotalWeight += nb.Weight
			inDegree[nb.Name]++
		}
	}

	for i := 0; i < s.Len(); i++ {
		if len(s.Neighbors(i)) == 0 && inDegree[s.Name(i)] == 0 {
			stats.IsolatedCount++
		}
	}

	if stats.ArcCount > 0 {
		stats.AverageWeight = stats.TotalWeight / float64(stats.ArcCount)
	}

	if stats.VertexCount > 0 {
		stats.AverageOutDegree = float64(stats.ArcCount) / float64(stats.VertexCount)
	}

	// Плотность ориентированного графа без петель
	if stats.VertexCount > 1 {
		maxArcs := stats.VertexCount * (stats.VertexCount - 1)
		stats.Density = float64(stats.ArcCount) / float64(maxArcs)
	}

	components := ConnectedComponents(s)
	stats.ComponentCount = len(components)
	stats.IsConnected = len(components) <= 1

	return stats
}
