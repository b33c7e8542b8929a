package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"routeviz/pkg/apperror"
	"routeviz/pkg/domain"
	"routeviz/services/pathfinder-svc/internal/engine"
)

func scenarioReport(t *testing.T) *Report {
	t.Helper()

	g := domain.NewGraph()
	g.AddUndirectedEdge("A", "B", 1)
	g.AddUndirectedEdge("B", "C", 2)
	g.AddUndirectedEdge("A", "C", 4)
	g.AddUndirectedEdge("C", "D", 1)
	g.AddVertex("E", 0, 0)

	result, err := engine.RunDijkstra(g, "A", engine.WithTarget("D"))
	require.NoError(t, err)

	return &Report{
		Author:      "tester",
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Graph:       g,
		Result:      result,
		SearchID:    "search-1",
		ElapsedMs:   0.25,
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{"CSV", FormatCSV},
		{"xlsx", FormatExcel},
		{"excel", FormatExcel},
		{"markdown", FormatMarkdown},
		{" md ", FormatMarkdown},
		{"pdf", FormatPDF},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := New(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Format())
		})
	}
}

func TestNew_Unsupported(t *testing.T) {
	_, err := New("docx")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeUnsupportedFormat))
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []Format{FormatCSV, FormatJSON, FormatMarkdown, FormatPDF, FormatExcel}, Formats())
	assert.Equal(t, "md", FormatMarkdown.Extension())
	assert.Equal(t, "xlsx", FormatExcel.Extension())
}

func TestRender_NilResult(t *testing.T) {
	_, err := Render(context.Background(), NewJSONExporter(), &Report{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeNilInput))
}

func TestJSONExporter(t *testing.T) {
	r := scenarioReport(t)

	data, err := Render(context.Background(), NewJSONExporter(), r)
	require.NoError(t, err)

	var doc struct {
		Metadata JSONMetadata `json:"metadata"`
		Result   struct {
			Distances map[string]*float64 `json:"distances"`
			Path      []string            `json:"path"`
			Total     *float64            `json:"total"`
		} `json:"result"`
		Segments []JSONSegment `json:"segments"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "tester", doc.Metadata.Author)
	assert.Equal(t, DefaultTitle, doc.Metadata.Title)
	assert.Equal(t, "search-1", doc.Metadata.SearchID)
	assert.Equal(t, []string{"A", "B", "C", "D"}, doc.Result.Path)
	require.NotNil(t, doc.Result.Total)
	assert.Equal(t, 4.0, *doc.Result.Total)

	// Недостижимый город кодируется как null
	e, ok := doc.Result.Distances["E"]
	assert.True(t, ok)
	assert.Nil(t, e)

	require.Len(t, doc.Segments, 3)
	assert.Equal(t, "A", doc.Segments[0].From)
	require.NotNil(t, doc.Segments[0].Weight)
	assert.Equal(t, 1.0, *doc.Segments[0].Weight)
}

func TestCSVExporter(t *testing.T) {
	r := scenarioReport(t)

	data, err := NewCSVExporter().Export(context.Background(), r)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, len(r.Result.Steps)+1)

	assert.Equal(t, []string{"index", "current", "neighbor", "new_distance", "visited"}, records[0])
	assert.Equal(t, []string{"0", "A", "B", "1", "A"}, records[1])
	assert.Equal(t, []string{"2", "B", "C", "3", "A;B"}, records[3])
	// Завершающий шаг без соседа и без нового расстояния
	assert.Equal(t, []string{"4", "D", "", "", "A;B;C;D"}, records[5])
}

func TestCSVExporter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewCSVExporter().Export(ctx, scenarioReport(t))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExcelExporter(t *testing.T) {
	r := scenarioReport(t)

	data, err := Render(context.Background(), NewExcelExporter(), r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetSteps, SheetDistances}, f.GetSheetList())

	title, err := f.GetCellValue(SheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, DefaultTitle, title)

	rows, err := f.GetRows(SheetSteps)
	require.NoError(t, err)
	require.Len(t, rows, len(r.Result.Steps)+1)
	assert.Equal(t, stepColumns, rows[0])
	assert.Equal(t, "B", rows[1][2])
	assert.Equal(t, "4", rows[4][3])

	dist, err := f.GetRows(SheetDistances)
	require.NoError(t, err)
	require.Len(t, dist, 6)
	assert.Equal(t, []string{"A", "0", "—"}, dist[1])
	// Недостижимые города в конце
	assert.Equal(t, "E", dist[5][0])
	assert.Equal(t, "—", dist[5][1])
}

func TestMarkdownExporter(t *testing.T) {
	r := scenarioReport(t)

	data, err := NewMarkdownExporter().Export(context.Background(), r)
	require.NoError(t, err)
	md := string(data)

	assert.True(t, strings.HasPrefix(md, "# "+DefaultTitle))
	assert.Contains(t, md, "- **Author:** tester")
	assert.Contains(t, md, "| Total | 4 км |")
	assert.Contains(t, md, "1. A → B: 1 км")
	assert.Contains(t, md, "| index | current | neighbor | new_distance | visited |")
	assert.Contains(t, md, "| 0 | A | B | 1 | A |")
	assert.Contains(t, md, "| E | — | — |")
}

func TestMarkdownExporter_NoTrace(t *testing.T) {
	r := scenarioReport(t)
	result, err := engine.RunDijkstra(r.Graph, "A", engine.WithTarget("D"), engine.WithTrace(engine.TraceNone))
	require.NoError(t, err)
	r.Result = result

	data, err := NewMarkdownExporter().Export(context.Background(), r)
	require.NoError(t, err)
	assert.Contains(t, string(data), "_Trace was not recorded._")
}

func TestPDFExporter(t *testing.T) {
	data, err := Render(context.Background(), NewPDFExporter(), scenarioReport(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestBaseExporter_DistanceRows(t *testing.T) {
	var b BaseExporter
	rows := b.DistanceRows(scenarioReport(t))

	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.City)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, names)
	assert.Equal(t, "3", rows[2].Distance)
	assert.Equal(t, "B", rows[2].Previous)
}

func TestColName(t *testing.T) {
	tests := map[int]string{0: "A", 25: "Z", 26: "AA", 27: "AB", 701: "ZZ", 702: "AAA"}
	for index, want := range tests {
		assert.Equal(t, want, ColName(index))
	}
	assert.Equal(t, "C7", Cell(2, 7))
}
