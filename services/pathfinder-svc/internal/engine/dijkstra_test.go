package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeviz/pkg/apperror"
	"routeviz/pkg/domain"
)

// scenarioGraph A–B=1, B–C=2, A–C=4, C–D=1
func scenarioGraph() *domain.Graph {
	g := domain.NewGraph()
	g.AddUndirectedEdge("A", "B", 1)
	g.AddUndirectedEdge("B", "C", 2)
	g.AddUndirectedEdge("A", "C", 4)
	g.AddUndirectedEdge("C", "D", 1)
	return g
}

func ptr(v float64) *float64 { return &v }

func TestRunDijkstra_Scenario(t *testing.T) {
	result, err := RunDijkstra(scenarioGraph(), "A", WithTarget("D"))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, result.Path)
	require.NotNil(t, result.Total)
	assert.Equal(t, 4.0, *result.Total)
	assert.True(t, result.Found())
	assert.Equal(t, []string{"A", "B", "C", "D"}, result.Visited)
}

func TestRunDijkstra_ScenarioTrace(t *testing.T) {
	result, err := RunDijkstra(scenarioGraph(), "A", WithTarget("D"))
	require.NoError(t, err)

	type brief struct {
		current, neighbor string
		newDist           *float64
		visited           int
	}
	want := []brief{
		{"A", "B", ptr(1), 1},
		{"A", "C", ptr(4), 1},
		{"B", "C", ptr(3), 2},
		{"C", "D", ptr(4), 3},
		{"D", "", nil, 4},
	}

	require.Len(t, result.Steps, len(want))
	for i, w := range want {
		s := result.Steps[i]
		assert.Equal(t, w.current, s.Current, "step %d current", i)
		assert.Equal(t, w.neighbor, s.Neighbor, "step %d neighbor", i)
		assert.Equal(t, w.newDist, s.NewDistance, "step %d new distance", i)
		assert.Len(t, s.Visited, w.visited, "step %d visited", i)
	}

	// Снимки не разделяют память с итоговым состоянием
	first := result.Steps[0]
	assert.Equal(t, 1.0, first.Distances["B"])
	assert.True(t, math.IsInf(first.Distances["C"], 1))
	assert.Equal(t, []string{"A"}, first.Visited)

	assert.True(t, result.Steps[4].IsTerminal())
	assert.Equal(t, RelaxationStats{Improved: 4, Skipped: 0}, result.Relaxations)
}

func TestRunDijkstra_TieBreakAndSkippedRelaxation(t *testing.T) {
	g := domain.NewGraph()
	g.AddUndirectedEdge("A", "B", 1)
	g.AddUndirectedEdge("A", "C", 1)
	g.AddUndirectedEdge("B", "C", 5)

	result, err := RunDijkstra(g, "A")
	require.NoError(t, err)

	// B и C на расстоянии 1: первой выбирается B (порядок вставки)
	assert.Equal(t, []string{"A", "B", "C"}, result.Visited)

	require.Len(t, result.Steps, 3)
	assert.Equal(t, "B", result.Steps[2].Current)
	assert.Equal(t, "C", result.Steps[2].Neighbor)
	assert.Nil(t, result.Steps[2].NewDistance)
	assert.False(t, result.Steps[2].Improved())
	assert.Equal(t, RelaxationStats{Improved: 2, Skipped: 1}, result.Relaxations)
}

func TestRunDijkstra_IsolatedTarget(t *testing.T) {
	g := domain.NewGraph()
	g.AddVertex("A", 0, 0)
	g.AddVertex("E", 5, 5)

	result, err := RunDijkstra(g, "A", WithTarget("E"))
	require.NoError(t, err)

	assert.Empty(t, result.Path)
	assert.NotNil(t, result.Path)
	assert.Nil(t, result.Total)
	assert.False(t, result.Found())
	assert.True(t, math.IsInf(result.Distances["E"], 1))
}

func TestRunDijkstra_UnknownSource(t *testing.T) {
	_, err := RunDijkstra(scenarioGraph(), "Z", WithTarget("A"))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeVertexNotFound))
}

func TestRunDijkstra_UnknownTargetRunsToCompletion(t *testing.T) {
	result, err := RunDijkstra(scenarioGraph(), "A", WithTarget("Nowhere"))
	require.NoError(t, err)

	assert.Empty(t, result.Path)
	assert.Nil(t, result.Total)
	assert.Len(t, result.Visited, 4)
	assert.Equal(t, 4.0, result.Distances["D"])
}

func TestRunDijkstra_NoTarget(t *testing.T) {
	result, err := RunDijkstra(scenarioGraph(), "A")
	require.NoError(t, err)

	assert.Equal(t, []string{}, result.Path)
	assert.Nil(t, result.Total)
	assert.Equal(t, Distances{"A": 0, "B": 1, "C": 3, "D": 4}, result.Distances)
	assert.Equal(t, map[string]string{"A": "", "B": "A", "C": "B", "D": "C"}, result.Previous)
	assert.NotEmpty(t, result.Steps)
}

func TestRunDijkstra_SourceEqualsTarget(t *testing.T) {
	result, err := RunDijkstra(scenarioGraph(), "B", WithTarget("B"))
	require.NoError(t, err)

	assert.Equal(t, []string{"B"}, result.Path)
	require.NotNil(t, result.Total)
	assert.Equal(t, 0.0, *result.Total)
	require.Len(t, result.Steps, 1)
	assert.True(t, result.Steps[0].IsTerminal())
}

func TestRunDijkstra_TargetNeighborsNotRelaxed(t *testing.T) {
	g := domain.NewGraph()
	g.AddDirectedEdge("A", "B", 1)
	g.AddDirectedEdge("B", "C", 1)

	result, err := RunDijkstra(g, "A", WithTarget("B"))
	require.NoError(t, err)

	assert.True(t, math.IsInf(result.Distances["C"], 1))
	assert.Equal(t, []string{"A", "B"}, result.Visited)
}

func TestRunDijkstra_OverwrittenWeight(t *testing.T) {
	g := domain.NewGraph()
	g.AddDirectedEdge("A", "B", 5)
	g.AddDirectedEdge("A", "B", 3)

	result, err := RunDijkstra(g, "A", WithTarget("B"))
	require.NoError(t, err)

	require.NotNil(t, result.Total)
	assert.Equal(t, 3.0, *result.Total)
	assert.Len(t, g.Edges(), 2)
}

func TestRunDijkstra_InvalidWeights(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
	}{
		{"negative", -1},
		{"nan", math.NaN()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := domain.NewGraph()
			g.AddDirectedEdge("A", "B", 1)
			g.AddDirectedEdge("X", "Y", tt.weight)

			_, err := RunDijkstra(g, "A", WithTarget("B"))
			require.Error(t, err)
			assert.True(t, apperror.Is(err, apperror.CodeInvalidWeight))
		})
	}
}

func TestRunDijkstra_ZeroAndInfiniteWeights(t *testing.T) {
	g := domain.NewGraph()
	g.AddDirectedEdge("A", "B", 0)
	g.AddDirectedEdge("A", "C", math.Inf(1))

	result, err := RunDijkstra(g, "A")
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Distances["B"])
	assert.False(t, result.Distances.Reachable("C"))
	assert.Equal(t, 1, result.Relaxations.Skipped)
}

func TestRunDijkstra_Options(t *testing.T) {
	g := scenarioGraph()

	_, err := RunDijkstra(g, "A", WithStrategy("quantum"))
	assert.True(t, apperror.Is(err, apperror.CodeInvalidOption))

	_, err = RunDijkstra(g, "A", WithTrace("partial"))
	assert.True(t, apperror.Is(err, apperror.CodeInvalidOption))

	_, err = RunDijkstra(g, "A", WithMaxVertices(3))
	assert.True(t, apperror.Is(err, apperror.CodeGraphTooLarge))

	_, err = RunDijkstra(g, "A", WithMaxVertices(4))
	assert.NoError(t, err)

	_, err = RunDijkstra(nil, "A")
	assert.Error(t, err)
}

func TestRunDijkstra_TraceNone(t *testing.T) {
	full, err := RunDijkstra(scenarioGraph(), "A", WithTarget("D"))
	require.NoError(t, err)
	none, err := RunDijkstra(scenarioGraph(), "A", WithTarget("D"), WithTrace(TraceNone))
	require.NoError(t, err)

	assert.Empty(t, none.Steps)
	assert.Equal(t, full.Distances, none.Distances)
	assert.Equal(t, full.Previous, none.Previous)
	assert.Equal(t, full.Path, none.Path)
	assert.Equal(t, *full.Total, *none.Total)
	assert.Equal(t, full.Relaxations, none.Relaxations)
}

func TestRunDijkstra_SnapshotIsolation(t *testing.T) {
	g := scenarioGraph()
	result, err := RunDijkstra(g, "A", WithTarget("D"))
	require.NoError(t, err)

	g.RemoveVertex("C")

	assert.Equal(t, []string{"A", "B", "C", "D"}, result.Path)
}

// randomGraph строит случайный граф с целыми весами
func randomGraph(r *rand.Rand, n, arcs int) *domain.Graph {
	g := domain.NewGraph()
	for i := 0; i < n; i++ {
		g.AddVertex(fmt.Sprintf("v%d", i), 0, 0)
	}
	for i := 0; i < arcs; i++ {
		a := fmt.Sprintf("v%d", r.Intn(n))
		b := fmt.Sprintf("v%d", r.Intn(n))
		w := float64(r.Intn(5))
		if r.Intn(2) == 0 {
			g.AddUndirectedEdge(a, b, w)
		} else {
			g.AddDirectedEdge(a, b, w)
		}
	}
	return g
}

func TestRunDijkstra_HeapMatchesLinear(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for iter := 0; iter < 50; iter++ {
		g := randomGraph(r, 2+r.Intn(12), r.Intn(30))
		names := g.VertexNames()
		source := names[r.Intn(len(names))]
		target := names[r.Intn(len(names))]

		linear, err := RunDijkstra(g, source, WithTarget(target), WithStrategy(StrategyLinear))
		require.NoError(t, err)
		heap, err := RunDijkstra(g, source, WithTarget(target), WithStrategy(StrategyHeap))
		require.NoError(t, err)

		linearJSON, err := json.Marshal(linear.Steps)
		require.NoError(t, err)
		heapJSON, err := json.Marshal(heap.Steps)
		require.NoError(t, err)

		assert.Equal(t, string(linearJSON), string(heapJSON), "iteration %d", iter)
		assert.Equal(t, linear.Path, heap.Path, "iteration %d", iter)
		assert.Equal(t, linear.Visited, heap.Visited, "iteration %d", iter)
	}
}

func TestRunDijkstra_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for iter := 0; iter < 50; iter++ {
		g := randomGraph(r, 2+r.Intn(10), r.Intn(25))
		names := g.VertexNames()
		source := names[r.Intn(len(names))]
		target := names[r.Intn(len(names))]

		result, err := RunDijkstra(g, source, WithTarget(target))
		require.NoError(t, err)

		assert.Equal(t, 0.0, result.Distances[source])

		// Путь и сумма согласованы
		if result.Total != nil {
			w, ok := domain.PathWeight(g, result.Path)
			require.True(t, ok)
			assert.InDelta(t, *result.Total, w, domain.Epsilon)
			assert.Equal(t, source, result.Path[0])
			assert.Equal(t, target, result.Path[len(result.Path)-1])
		}

		// Без цели достигается неподвижная точка релаксации
		all, err := RunDijkstra(g, source)
		require.NoError(t, err)
		for _, arc := range g.Arcs() {
			du := all.Distances[arc.Source]
			if math.IsInf(du, 1) {
				continue
			}
			assert.LessOrEqual(t, all.Distances[arc.Target], du+arc.Weight+domain.Epsilon,
				"arc %s violates fixpoint", arc)
		}
	}
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyLinear, s)

	s, err = ParseStrategy("heap")
	require.NoError(t, err)
	assert.Equal(t, StrategyHeap, s)

	_, err = ParseStrategy("fib")
	assert.Error(t, err)
}

func TestParseTraceMode(t *testing.T) {
	m, err := ParseTraceMode("none")
	require.NoError(t, err)
	assert.Equal(t, TraceNone, m)

	_, err = ParseTraceMode("verbose")
	assert.Error(t, err)
}
