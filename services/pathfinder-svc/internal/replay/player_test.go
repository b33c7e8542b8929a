package replay

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeviz/pkg/domain"
	"routeviz/services/pathfinder-svc/internal/engine"
)

// Трасса A->D на графе A–B=1, B–C=2, A–C=4, C–D=1, плюс изолированный E
func scenarioResult(t *testing.T, opts ...engine.Option) *engine.Result {
	t.Helper()
	g := domain.NewGraph()
	g.AddUndirectedEdge("A", "B", 1)
	g.AddUndirectedEdge("B", "C", 2)
	g.AddUndirectedEdge("A", "C", 4)
	g.AddUndirectedEdge("C", "D", 1)
	g.AddVertex("E", 0, 0)

	result, err := engine.RunDijkstra(g, "A", append([]engine.Option{engine.WithTarget("D")}, opts...)...)
	require.NoError(t, err)
	return result
}

func TestPlayer_StepFrames(t *testing.T) {
	p := NewPlayer(scenarioResult(t), "A", "D")
	assert.Equal(t, 6, p.Len())

	// Шаг 0: A релаксирует B
	frame, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, 0, frame.Index)
	assert.Equal(t, 5, frame.Total)
	assert.False(t, frame.Final)
	assert.Equal(t, &Arc{From: "A", To: "B"}, frame.ActiveArc)
	assert.Equal(t, map[string]Role{
		"A": RoleSource,
		"B": RoleNeighbor,
		"C": RoleIdle,
		"D": RoleTarget,
		"E": RoleIdle,
	}, frame.Roles)

	p.Next()
	// Шаг 2: B релаксирует C, A уже посещена
	frame, _ = p.Next()
	assert.Equal(t, RoleCurrent, frame.Roles["B"])
	assert.Equal(t, RoleNeighbor, frame.Roles["C"])
	assert.Equal(t, RoleSource, frame.Roles["A"])

	p.Next()
	// Шаг 4: завершающий шаг на цели
	frame, ok = p.Next()
	require.True(t, ok)
	require.NotNil(t, frame.Step)
	assert.True(t, frame.Step.IsTerminal())
	assert.Nil(t, frame.ActiveArc)
	assert.Equal(t, RoleTarget, frame.Roles["D"])
	assert.Equal(t, RoleVisited, frame.Roles["C"])
}

func TestPlayer_FinalFrame(t *testing.T) {
	p := NewPlayer(scenarioResult(t), "A", "D")
	for i := 0; i < 5; i++ {
		_, ok := p.Next()
		require.True(t, ok)
	}
	assert.False(t, p.Finished())

	frame, ok := p.Next()
	require.True(t, ok)
	assert.True(t, frame.Final)
	assert.True(t, p.Finished())
	assert.Nil(t, frame.Step)
	assert.Equal(t, 5, frame.Index)
	assert.Equal(t, map[string]Role{
		"A": RoleSource,
		"B": RolePath,
		"C": RolePath,
		"D": RoleTarget,
		"E": RoleIdle,
	}, frame.Roles)

	again, ok := p.Next()
	assert.False(t, ok)
	assert.True(t, again.Final)
}

func TestPlayer_Reset(t *testing.T) {
	p := NewPlayer(scenarioResult(t), "A", "D")
	for i := 0; i < 7; i++ {
		p.Next()
	}
	require.True(t, p.Finished())

	p.Reset()
	assert.False(t, p.Finished())

	frame, ok := p.Next()
	require.True(t, ok)
	assert.Equal(t, 0, frame.Index)
}

func TestPlayer_NoSteps(t *testing.T) {
	p := NewPlayer(scenarioResult(t, engine.WithTrace(engine.TraceNone)), "A", "D")

	frame, ok := p.Next()
	require.True(t, ok)
	assert.True(t, frame.Final)
	assert.Equal(t, RolePath, frame.Roles["B"])
}

func TestPlayer_UnknownEndpointsIgnored(t *testing.T) {
	p := NewPlayer(scenarioResult(t), "A", "Nowhere")

	frame, _ := p.Next()
	_, ok := frame.Roles["Nowhere"]
	assert.False(t, ok)
}

func TestPlayer_Play(t *testing.T) {
	p := NewPlayer(scenarioResult(t), "A", "D")

	var frames []Frame
	for frame := range p.Play(context.Background(), time.Millisecond) {
		frames = append(frames, frame)
	}

	require.Len(t, frames, 6)
	assert.True(t, frames[5].Final)
	for i, f := range frames {
		assert.Equal(t, i, f.Index)
	}
}

func TestPlayer_PlayClampsDelay(t *testing.T) {
	p := NewPlayer(scenarioResult(t), "A", "D")

	start := time.Now()
	frames := p.Play(context.Background(), 0)
	<-frames
	<-frames
	assert.GreaterOrEqual(t, time.Since(start), 2*MinDelay)
}

func TestPlayer_PlayCancel(t *testing.T) {
	p := NewPlayer(scenarioResult(t), "A", "D")
	ctx, cancel := context.WithCancel(context.Background())

	frames := p.Play(ctx, MinDelay)
	<-frames
	cancel()

	count := 0
	for range frames {
		count++
	}
	assert.LessOrEqual(t, count, 1)
}
