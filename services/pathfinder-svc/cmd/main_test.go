package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeviz/pkg/apperror"
	"routeviz/pkg/config"
	"routeviz/services/pathfinder-svc/internal/engine"
	"routeviz/services/pathfinder-svc/internal/replay"
)

const testDistances = `source,target,distance_km
A,B,1
B,C,2
A,C,4
C,D,1
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "distances.csv"), []byte(testDistances), 0o644))

	cfg, err := config.NewLoader(config.WithConfigPaths(filepath.Join(dir, "missing.yaml"))).Load()
	require.NoError(t, err)
	cfg.Dataset.Dir = dir
	cfg.Log.Output = "discard"
	return cfg
}

func TestApplyFlags(t *testing.T) {
	cfg := &config.Config{}
	applyFlags(cfg, flags{datasetDir: "maps", exportFmt: "csv", output: "out.csv", strategy: "heap"})

	assert.Equal(t, "maps", cfg.Dataset.Dir)
	assert.Equal(t, "csv", cfg.Export.Format)
	assert.Equal(t, "out.csv", cfg.Export.Output)
	assert.Equal(t, "heap", cfg.Search.Strategy)
}

func TestSearchConfig(t *testing.T) {
	cfg := &config.Config{Search: config.SearchConfig{Strategy: "heap", Trace: "none", MaxVertices: 10}}

	sc, err := searchConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, engine.StrategyHeap, sc.Strategy)
	assert.Equal(t, engine.TraceNone, sc.Trace)
	assert.Equal(t, 10, sc.MaxVertices)

	cfg.Search.Strategy = "bfs"
	_, err = searchConfig(cfg)
	assert.True(t, apperror.Is(err, apperror.CodeInvalidOption))
}

func TestDescribeFrame(t *testing.T) {
	d := 3.0
	tests := []struct {
		name  string
		frame replay.Frame
		want  string
	}{
		{
			name:  "improved",
			frame: replay.Frame{Index: 0, Total: 5, Step: &engine.Step{Current: "A", Neighbor: "B", NewDistance: &d}},
			want:  "[1/5] A → B: 3 км",
		},
		{
			name:  "skipped",
			frame: replay.Frame{Index: 1, Total: 5, Step: &engine.Step{Current: "B", Neighbor: "A"}},
			want:  "[2/5] B → A: без улучшения",
		},
		{
			name:  "terminal",
			frame: replay.Frame{Index: 4, Total: 5, Step: &engine.Step{Current: "D"}},
			want:  "[5/5] D: цель достигнута",
		},
		{
			name:  "final",
			frame: replay.Frame{Index: 5, Total: 5, Final: true},
			want:  "[5/5] готово",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describeFrame(tt.frame))
		})
	}
}

func TestPathfind_PrintsSummary(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	err := pathfind(context.Background(), cfg, flags{from: "A", to: "D"}, nil, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Кратчайший путь: 4 км")
	assert.Contains(t, out.String(), "A (1 км) → B (2 км) → C (1 км) → D")
}

func TestPathfind_ListsCitiesWithoutEndpoints(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, pathfind(context.Background(), cfg, flags{}, nil, &out))
	assert.Equal(t, "Города (4): A, B, C, D\n", out.String())
}

func TestPathfind_UnknownCity(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	require.NoError(t, pathfind(context.Background(), cfg, flags{from: "A", to: "Z"}, nil, &out))
	assert.Equal(t, "Путь не найден.\n", out.String())
}

func TestPathfind_Export(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Format = "csv"
	cfg.Export.Output = filepath.Join(t.TempDir(), "trace.csv")

	var out bytes.Buffer
	require.NoError(t, pathfind(context.Background(), cfg, flags{from: "A", to: "D"}, nil, &out))

	data, err := os.ReadFile(cfg.Export.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), "index,current,neighbor,new_distance,visited")
	assert.Contains(t, out.String(), "Экспорт: "+cfg.Export.Output)
}

func TestPathfind_MissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Dir = filepath.Join(t.TempDir(), "nope")

	err := pathfind(context.Background(), cfg, flags{from: "A", to: "D"}, nil, &bytes.Buffer{})
	assert.True(t, apperror.Is(err, apperror.CodeInvalidDataset))
}
