package domain

import (
	"fmt"
	"sync"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Vertex город на карте
type Vertex struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Edge запись о добавленной дуге
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
}

// String возвращает строковое представление дуги
func (e Edge) String() string {
	return fmt.Sprintf("%s->%s(%g)", e.Source, e.Target, e.Weight)
}

// Neighbor сосед вершины вместе с весом дуги
type Neighbor struct {
	Name   string
	Weight float64
}

type adjacencyList = orderedmap.OrderedMap[string, float64]

// Graph ориентированный взвешенный граф дорог.
//
// Порядок вставки вершин и соседей сохраняется: от него зависит
// выбор вершины при равных расстояниях в поиске кратчайшего пути.
// edges хранит историю добавленных дуг и может расходиться с adjacency
// после перезаписи веса; источником истины является adjacency.
type Graph struct {
	vertices  *orderedmap.OrderedMap[string, *Vertex]
	adjacency *orderedmap.OrderedMap[string, *adjacencyList]
	edges     []Edge
	version   uint64

	mu sync.RWMutex
}

// NewGraph создаёт новый пустой граф
func NewGraph() *Graph {
	return &Graph{
		vertices:  orderedmap.New[string, *Vertex](),
		adjacency: orderedmap.New[string, *adjacencyList](),
	}
}

// AddVertex добавляет вершину. Существующая вершина не меняется.
func (g *Graph) AddVertex(name string, x, y float64) {
	if name == NoVertex {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.addVertexLocked(name, x, y)
}

func (g *Graph) addVertexLocked(name string, x, y float64) bool {
	if _, ok := g.vertices.Get(name); ok {
		return false
	}
	g.vertices.Set(name, &Vertex{Name: name, X: x, Y: y})
	g.adjacency.Set(name, orderedmap.New[string, float64]())
	g.version++
	return true
}

// SetVertexPosition перемещает вершину, создавая её при отсутствии
func (g *Graph) SetVertexPosition(name string, x, y float64) {
	if name == NoVertex {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if v, ok := g.vertices.Get(name); ok {
		v.X, v.Y = x, y
		g.version++
		return
	}
	g.addVertexLocked(name, x, y)
}

// RemoveVertex удаляет вершину вместе со всеми инцидентными дугами
func (g *Graph) RemoveVertex(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.vertices.Get(name); !ok {
		return
	}

	g.edges = filterEdges(g.edges, func(e Edge) bool {
		return e.Source != name && e.Target != name
	})

	g.adjacency.Delete(name)
	for pair := g.adjacency.Oldest(); pair != nil; pair = pair.Next() {
		pair.Value.Delete(name)
	}

	g.vertices.Delete(name)
	g.version++
}

// AddDirectedEdge добавляет дугу source->target.
// Отсутствующие концы создаются в точке (0,0), петли игнорируются,
// повторное добавление перезаписывает вес.
func (g *Graph) AddDirectedEdge(source, target string, weight float64) {
	if source == target || source == NoVertex || target == NoVertex {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.addArcLocked(source, target, weight)
}

// AddUndirectedEdge добавляет дорогу: две дуги с одинаковым весом
func (g *Graph) AddUndirectedEdge(source, target string, weight float64) {
	if source == target || source == NoVertex || target == NoVertex {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.addArcLocked(source, target, weight)
	g.addArcLocked(target, source, weight)
}

func (g *Graph) addArcLocked(source, target string, weight float64) {
	g.addVertexLocked(source, DefaultX, DefaultY)
	g.addVertexLocked(target, DefaultX, DefaultY)

	g.edges = append(g.edges, Edge{Source: source, Target: target, Weight: weight})

	adj, _ := g.adjacency.Get(source)
	adj.Set(target, weight)
	g.version++
}

// RemoveDirectedEdge удаляет дугу source->target
func (g *Graph) RemoveDirectedEdge(source, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.removeArcLocked(source, target)
}

// RemoveUndirectedEdge удаляет обе дуги между source и target
func (g *Graph) RemoveUndirectedEdge(source, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.removeArcLocked(source, target)
	g.removeArcLocked(target, source)
}

func (g *Graph) removeArcLocked(source, target string) {
	before := len(g.edges)
	g.edges = filterEdges(g.edges, func(e Edge) bool {
		return e.Source != source || e.Target != target
	})

	removed := before != len(g.edges)
	if adj, ok := g.adjacency.Get(source); ok {
		if _, present := adj.Delete(target); present {
			removed = true
		}
	}
	if removed {
		g.version++
	}
}

// Neighbors возвращает копию словника сосед->вес.
// Для неизвестной или изолированной вершины возвращается пустой словарь.
func (g *Graph) Neighbors(name string) map[string]float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adj, ok := g.adjacency.Get(name)
	if !ok {
		return map[string]float64{}
	}

	result := make(map[string]float64, adj.Len())
	for pair := adj.Oldest(); pair != nil; pair = pair.Next() {
		result[pair.Key] = pair.Value
	}
	return result
}

// OrderedNeighbors возвращает соседей в порядке добавления дуг
func (g *Graph) OrderedNeighbors(name string) []Neighbor {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adj, ok := g.adjacency.Get(name)
	if !ok {
		return nil
	}
	return neighborSlice(adj)
}

// Weight возвращает вес дуги source->target
func (g *Graph) Weight(source, target string) (float64, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	adj, ok := g.adjacency.Get(source)
	if !ok {
		return 0, false
	}
	return adj.Get(target)
}

// HasVertex проверяет наличие вершины
func (g *Graph) HasVertex(name string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	_, ok := g.vertices.Get(name)
	return ok
}

// GetVertex возвращает копию вершины
func (g *Graph) GetVertex(name string) (Vertex, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.vertices.Get(name)
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// Vertices возвращает вершины в порядке вставки
func (g *Graph) Vertices() []Vertex {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]Vertex, 0, g.vertices.Len())
	for pair := g.vertices.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, *pair.Value)
	}
	return result
}

// VertexNames возвращает имена вершин в порядке вставки
func (g *Graph) VertexNames() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.vertexNamesLocked()
}

func (g *Graph) vertexNamesLocked() []string {
	result := make([]string, 0, g.vertices.Len())
	for pair := g.vertices.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, pair.Key)
	}
	return result
}

// Edges возвращает журнал добавленных дуг (историю, а не текущее состояние)
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]Edge, len(g.edges))
	copy(result, g.edges)
	return result
}

// Arcs возвращает текущие дуги из списка смежности
func (g *Graph) Arcs() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var result []Edge
	for pair := g.adjacency.Oldest(); pair != nil; pair = pair.Next() {
		for nb := pair.Value.Oldest(); nb != nil; nb = nb.Next() {
			result = append(result, Edge{Source: pair.Key, Target: nb.Key, Weight: nb.Value})
		}
	}
	return result
}

// VertexCount возвращает количество вершин
func (g *Graph) VertexCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.vertices.Len()
}

// ArcCount возвращает количество дуг в списке смежности
func (g *Graph) ArcCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	count := 0
	for pair := g.adjacency.Oldest(); pair != nil; pair = pair.Next() {
		count += pair.Value.Len()
	}
	return count
}

// Version возвращает счётчик изменений графа
func (g *Graph) Version() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.version
}

// Snapshot фиксирует состояние графа под одной блокировкой на чтение
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	names := g.vertexNamesLocked()
	s := &Snapshot{
		names:     names,
		index:     make(map[string]int, len(names)),
		adjacency: make([][]Neighbor, len(names)),
		version:   g.version,
	}
	for i, name := range names {
		s.index[name] = i
		adj, _ := g.adjacency.Get(name)
		s.adjacency[i] = neighborSlice(adj)
	}
	return s
}

// Clone создаёт глубокую копию графа
func (g *Graph) Clone() *Graph {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clone := NewGraph()
	for pair := g.vertices.Oldest(); pair != nil; pair = pair.Next() {
		v := *pair.Value
		clone.vertices.Set(pair.Key, &v)
	}
	for pair := g.adjacency.Oldest(); pair != nil; pair = pair.Next() {
		adj := orderedmap.New[string, float64]()
		for nb := pair.Value.Oldest(); nb != nil; nb = nb.Next() {
			adj.Set(nb.Key, nb.Value)
		}
		clone.adjacency.Set(pair.Key, adj)
	}
	clone.edges = make([]Edge, len(g.edges))
	copy(clone.edges, g.edges)
	clone.version = g.version
	return clone
}

func neighborSlice(adj *adjacencyList) []Neighbor {
	if adj == nil || adj.Len() == 0 {
		return nil
	}
	result := make([]Neighbor, 0, adj.Len())
	for pair := adj.Oldest(); pair != nil; pair = pair.Next() {
		result = append(result, Neighbor{Name: pair.Key, Weight: pair.Value})
	}
	return result
}

func filterEdges(edges []Edge, keep func(Edge) bool) []Edge {
	result := edges[:0]
	for _, e := range edges {
		if keep(e) {
			result = append(result, e)
		}
	}
	return result
}
