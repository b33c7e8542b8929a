package domain

// Segment участок маршрута между соседними городами
type Segment struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// ReconstructPath восстанавливает путь из карты предшественников.
// Возвращает пустой путь, если обратный проход от target не доходит до source.
func ReconstructPath(previous map[string]string, source, target string) []string {
	if source == NoVertex || target == NoVertex {
		return []string{}
	}

	path := []string{}
	current := target
	seen := make(map[string]bool)

	for current != NoVertex {
		if seen[current] {
			return []string{}
		}
		seen[current] = true
		path = append(path, current)
		if current == source {
			break
		}
		current = previous[current]
	}

	if path[len(path)-1] != source {
		return []string{}
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// PathSegments разбивает путь на участки с весами из графа
func PathSegments(g *Graph, path []string) ([]Segment, bool) {
	if len(path) < 2 {
		return []Segment{}, true
	}

	segments := make([]Segment, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		w, ok := g.Weight(path[i], path[i+1])
		if !ok {
			return nil, false
		}
		segments = append(segments, Segment{From: path[i], To: path[i+1], Weight: w})
	}
	return segments, true
}

// PathWeight вычисляет сумму весов дуг пути
func PathWeight(g *Graph, path []string) (float64, bool) {
	segments, ok := PathSegments(g, path)
	if !ok {
		return 0, false
	}

	var total float64
	for _, s := range segments {
		total += s.Weight
	}
	return total, true
}
