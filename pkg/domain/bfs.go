package domain

// Reachable возвращает множество вершин, достижимых из source по дугам
func Reachable(s *Snapshot, source string) map[string]bool {
	visited := make(map[string]bool)
	start, ok := s.Index(source)
	if !ok {
		return visited
	}

	queue := []int{start}
	visited[source] = true

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]

		for _, nb := range s.Neighbors(u) {
			if visited[nb.Name] {
				continue
			}
			visited[nb.Name] = true
			v, _ := s.Index(nb.Name)
			queue = append(queue, v)
		}
	}

	return visited
}

// ConnectedComponents находит компоненты слабой связности.
// Компоненты и вершины внутри них упорядочены по порядку вставки.
func ConnectedComponents(s *Snapshot) [][]string {
	n := s.Len()
	undirected := make([][]int, n)
	for u := 0; u < n; u++ {
		for _, nb := range s.Neighbors(u) {
			v, _ := s.Index(nb.Name)
			undirected[u] = append(undirected[u], v)
			undirected[v] = append(undirected[v], u)
		}
	}

	visited := make([]bool, n)
	components := make([][]string, 0, n/10+1)

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}

		var component []string
		queue := []int{start}
		visited[start] = true

		for len(queue) > 0 {
			u := queue[0]
			queue = queue[1:]
			component = append(component, s.Name(u))

			for _, v := range undirected[u] {
				if !visited[v] {
					visited[v] = true
					queue = append(queue, v)
				}
			}
		}

		components = append(components, component)
	}

	return components
}
