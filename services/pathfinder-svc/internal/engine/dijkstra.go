// Package engine implements an instrumented single-source shortest path
// search that records every relaxation decision as a replayable trace.
package engine

import (
	"routeviz/pkg/apperror"
	"routeviz/pkg/domain"
)

// =============================================================================
// Dijkstra's Algorithm (instrumented)
// =============================================================================
//
// RunDijkstra finds shortest distances from a source vertex over a snapshot of
// the graph and records a Step for every relaxation decision.
//
// Selection rule: the unvisited vertex with the strictly smallest distance,
// ties broken by vertex insertion order. Neighbors are relaxed in the order
// their arcs were added. These two rules make the trace deterministic.
//
// Time Complexity:
//   - linear strategy: O(V²)
//   - heap strategy:   O((V + E) log V)
//   - full trace adds O(V) per recorded step for the state snapshots
//
// Negative and NaN weights are rejected before the search starts.
// =============================================================================

// state рабочее состояние поиска, вершины адресуются индексом снимка
type state struct {
	snap    *domain.Snapshot
	dist    []float64
	prev    []int
	visited []bool
	order   []string
}

func newState(snap *domain.Snapshot, source int) *state {
	n := snap.Len()
	st := &state{
		snap:    snap,
		dist:    make([]float64, n),
		prev:    make([]int, n),
		visited: make([]bool, n),
		order:   make([]string, 0, n),
	}
	for i := range st.dist {
		st.dist[i] = domain.Infinity
		st.prev[i] = -1
	}
	st.dist[source] = 0
	return st
}

func (st *state) distances() Distances {
	out := make(Distances, len(st.dist))
	for i, d := range st.dist {
		out[st.snap.Name(i)] = d
	}
	return out
}

func (st *state) previous() map[string]string {
	out := make(map[string]string, len(st.prev))
	for i, p := range st.prev {
		if p < 0 {
			out[st.snap.Name(i)] = domain.NoVertex
			continue
		}
		out[st.snap.Name(i)] = st.snap.Name(p)
	}
	return out
}

func (st *state) step(current, neighbor string, newDist *float64) Step {
	visited := make([]string, len(st.order))
	copy(visited, st.order)
	return Step{
		Current:     current,
		Neighbor:    neighbor,
		NewDistance: newDist,
		Distances:   st.distances(),
		Visited:     visited,
	}
}

// RunDijkstra выполняет поиск кратчайших путей от source.
//
// Неизвестный source - ошибка VERTEX_NOT_FOUND. Неизвестная цель не проверяется:
// поиск проходит весь граф, путь пуст, Total равен nil.
func RunDijkstra(g *domain.Graph, source string, opts ...Option) (*Result, error) {
	if g == nil {
		return nil, apperror.ErrNilGraph
	}

	return RunOnSnapshot(g.Snapshot(), source, opts...)
}

// RunOnSnapshot выполняет поиск на готовом снимке графа
func RunOnSnapshot(snap *domain.Snapshot, source string, opts ...Option) (*Result, error) {
	if snap == nil {
		return nil, apperror.ErrNilGraph
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}
	o.Strategy, _ = ParseStrategy(string(o.Strategy))
	o.Trace, _ = ParseTraceMode(string(o.Trace))

	return run(snap, source, o)
}

func run(snap *domain.Snapshot, source string, o Options) (*Result, error) {
	if o.MaxVertices > 0 && snap.Len() > o.MaxVertices {
		return nil, apperror.New(apperror.CodeGraphTooLarge, "graph exceeds vertex limit").
			WithDetails("vertices", snap.Len()).
			WithDetails("limit", o.MaxVertices)
	}

	src, ok := snap.Index(source)
	if !ok {
		return nil, apperror.VertexNotFound(source, "source")
	}

	if arc, bad := snap.FirstInvalidArc(); bad {
		return nil, apperror.InvalidWeight(arc.Source, arc.Target, arc.Weight)
	}

	target := -1
	if o.Target != domain.NoVertex {
		if i, ok := snap.Index(o.Target); ok {
			target = i
		}
	}

	st := newState(snap, src)
	sel := newSelector(o.Strategy, st)
	record := o.Trace == TraceFull

	result := &Result{
		Source:   source,
		Target:   o.Target,
		Strategy: o.Strategy,
		Trace:    o.Trace,
		Steps:    []Step{},
	}

	for len(st.order) < snap.Len() {
		u := sel.next()
		if u < 0 {
			break
		}

		st.visited[u] = true
		current := snap.Name(u)
		st.order = append(st.order, current)

		if u == target {
			if record {
				result.Steps = append(result.Steps, st.step(current, domain.NoVertex, nil))
			}
			break
		}

		for _, nb := range snap.Neighbors(u) {
			v, _ := snap.Index(nb.Name)
			if st.visited[v] {
				continue
			}

			alt := st.dist[u] + nb.Weight
			if alt < st.dist[v] {
				st.dist[v] = alt
				st.prev[v] = u
				sel.update(v, alt)
				result.Relaxations.Improved++
				if record {
					newDist := alt
					result.Steps = append(result.Steps, st.step(current, nb.Name, &newDist))
				}
				continue
			}

			result.Relaxations.Skipped++
			if record {
				result.Steps = append(result.Steps, st.step(current, nb.Name, nil))
			}
		}
	}

	result.Distances = st.distances()
	result.Previous = st.previous()
	result.Visited = st.order
	result.Path = []string{}

	if target >= 0 {
		path := domain.ReconstructPath(result.Previous, source, o.Target)
		if len(path) > 0 {
			total := st.dist[target]
			result.Path = path
			result.Total = &total
		}
	}

	return result, nil
}
