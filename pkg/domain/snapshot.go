package domain

// Snapshot неизменяемый срез графа для алгоритмов.
// Вершины адресуются индексом в порядке вставки.
type Snapshot struct {
	names     []string
	index     map[string]int
	adjacency [][]Neighbor
	version   uint64
}

// Len возвращает количество вершин
func (s *Snapshot) Len() int {
	return len(s.names)
}

// Names возвращает имена вершин в порядке вставки
func (s *Snapshot) Names() []string {
	return s.names
}

// Name возвращает имя вершины по индексу
func (s *Snapshot) Name(i int) string {
	return s.names[i]
}

// Index возвращает индекс вершины
func (s *Snapshot) Index(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Has проверяет наличие вершины
func (s *Snapshot) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Neighbors возвращает соседей вершины по индексу
func (s *Snapshot) Neighbors(i int) []Neighbor {
	return s.adjacency[i]
}

// Version возвращает версию графа на момент снимка
func (s *Snapshot) Version() uint64 {
	return s.version
}

// ArcCount возвращает количество дуг
func (s *Snapshot) ArcCount() int {
	count := 0
	for _, adj := range s.adjacency {
		count += len(adj)
	}
	return count
}

// FirstInvalidArc возвращает первую дугу с отрицательным или NaN весом
func (s *Snapshot) FirstInvalidArc() (Edge, bool) {
	for i, adj := range s.adjacency {
		for _, nb := range adj {
			if !IsValidWeight(nb.Weight) {
				return Edge{Source: s.names[i], Target: nb.Name, Weight: nb.Weight}, true
			}
		}
	}
	return Edge{}, false
}
