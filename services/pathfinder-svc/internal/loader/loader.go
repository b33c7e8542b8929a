// Package loader reads a road map dataset from disk: a CSV file with
// distances between cities and an optional JSON file with city positions.
package loader

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"routeviz/pkg/apperror"
	"routeviz/pkg/domain"
	"routeviz/pkg/logger"
	"routeviz/pkg/metrics"
	"routeviz/pkg/telemetry"
)

// Имена файлов и колонок по умолчанию
const (
	DefaultDistancesFile = "distances.csv"
	DefaultPositionsFile = "cities_positions_verbose.json"

	ColumnSource   = "source"
	ColumnTarget   = "target"
	ColumnDistance = "distance_km"
)

// ctxCheckInterval частота проверки отмены при чтении CSV
const ctxCheckInterval = 512

// Options параметры загрузки
type Options struct {
	DistancesFile string
	PositionsFile string
	// IncludeIsolated добавляет города, которые есть только в файле координат
	IncludeIsolated bool
}

func (o Options) withDefaults() Options {
	if o.DistancesFile == "" {
		o.DistancesFile = DefaultDistancesFile
	}
	if o.PositionsFile == "" {
		o.PositionsFile = DefaultPositionsFile
	}
	return o
}

// Road строка файла расстояний
type Road struct {
	Source   string
	Target   string
	Distance float64
	Line     int
}

// Position координаты города на карте
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dataset загруженная карта
type Dataset struct {
	Graph    *domain.Graph
	Roads    int
	Warnings *apperror.ValidationErrors
}

// LoadDataset загружает карту из каталога dir
func LoadDataset(ctx context.Context, dir string, opts Options) (*Dataset, error) {
	opts = opts.withDefaults()

	var ds *Dataset
	err := telemetry.Trace(ctx, "loader.LoadDataset", func(ctx context.Context) error {
		var err error
		ds, err = load(ctx, dir, opts)
		return err
	}, attribute.String(telemetry.AttrDatasetDir, dir))

	metrics.Get().RecordDatasetLoad(err == nil)
	if err != nil {
		logger.Error("dataset load failed", "dir", dir, "error", err)
		return nil, err
	}

	if ds.Warnings.HasWarnings() {
		logger.Warn("dataset rows skipped", "dir", dir, "reasons", ds.Warnings.WarningMessages())
	}
	logger.Info("dataset loaded",
		"dir", dir,
		"cities", ds.Graph.VertexCount(),
		"roads", ds.Roads,
		"skipped", len(ds.Warnings.Warnings),
	)
	return ds, nil
}

func load(ctx context.Context, dir string, opts Options) (*Dataset, error) {
	positions, err := readPositions(filepath.Join(dir, opts.PositionsFile))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, opts.DistancesFile))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidDataset, "cannot open distances file").
			WithField(opts.DistancesFile)
	}
	defer f.Close()

	roads, warnings, err := ParseDistances(ctx, f)
	if err != nil {
		return nil, err
	}

	telemetry.SetAttributes(ctx, attribute.Int(telemetry.AttrDatasetRows, len(roads)))

	return &Dataset{
		Graph:    BuildGraph(roads, positions, opts.IncludeIsolated),
		Roads:    len(roads),
		Warnings: warnings,
	}, nil
}

func readPositions(path string) (map[string]Position, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Position{}, nil
		}
		return nil, apperror.Wrap(err, apperror.CodeInvalidDataset, "cannot open positions file").
			WithField(filepath.Base(path))
	}
	defer f.Close()

	return ParsePositions(f)
}

// ParsePositions читает JSON вида {"Город": {"x": 1, "y": 2}}.
// Пробелы в именах обрезаются.
func ParsePositions(r io.Reader) (map[string]Position, error) {
	var raw map[string]Position
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidDataset, "malformed positions file")
	}

	positions := make(map[string]Position, len(raw))
	for name, pos := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		positions[name] = pos
	}
	return positions, nil
}

// ParseDistances читает CSV с колонками source,target,distance_km в любом порядке.
// Пустые концы и петли пропускаются с предупреждением; неверное число - ошибка.
func ParseDistances(ctx context.Context, r io.Reader) ([]Road, *apperror.ValidationErrors, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, apperror.New(apperror.CodeInvalidDataset, "distances file is empty")
		}
		return nil, nil, apperror.Wrap(err, apperror.CodeInvalidDataset, "malformed distances header")
	}

	cols, err := columnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	warnings := apperror.NewValidationErrors()
	var roads []Road

	for n := 0; ; n++ {
		if n%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, apperror.Wrap(err, apperror.CodeInvalidDataset, "malformed distances row")
		}

		line, _ := reader.FieldPos(0)
		source := strings.TrimSpace(record[cols.source])
		target := strings.TrimSpace(record[cols.target])

		if source == "" || target == "" {
			warnings.Add(apperror.NewWarning(apperror.CodeInvalidDataset,
				fmt.Sprintf("line %d: empty city name", line)).WithDetails("line", line))
			continue
		}
		if source == target {
			warnings.Add(apperror.NewWarning(apperror.CodeInvalidDataset,
				fmt.Sprintf("line %d: road from %q to itself", line, source)).WithDetails("line", line))
			continue
		}

		raw := strings.TrimSpace(record[cols.distance])
		distance, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, nil, apperror.Wrap(err, apperror.CodeInvalidDataset,
				fmt.Sprintf("line %d: invalid distance %q", line, raw)).WithField(ColumnDistance)
		}

		roads = append(roads, Road{Source: source, Target: target, Distance: distance, Line: line})
	}

	return roads, warnings, nil
}

type columns struct {
	source, target, distance int
}

func columnIndex(header []string) (columns, error) {
	idx := map[string]int{}
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	get := func(name string) int {
		i, ok := idx[name]
		if !ok {
			missing = append(missing, name)
		}
		return i
	}

	cols := columns{
		source:   get(ColumnSource),
		target:   get(ColumnTarget),
		distance: get(ColumnDistance),
	}
	if len(missing) > 0 {
		return columns{}, apperror.New(apperror.CodeInvalidDataset,
			"distances header is missing columns: "+strings.Join(missing, ", "))
	}
	return cols, nil
}

// BuildGraph строит граф: вершины в порядке первого появления в CSV,
// каждая строка - двусторонняя дорога.
func BuildGraph(roads []Road, positions map[string]Position, includeIsolated bool) *domain.Graph {
	g := domain.NewGraph()

	addCity := func(name string) {
		if g.HasVertex(name) {
			return
		}
		pos, ok := positions[name]
		if !ok {
			pos = Position{X: domain.DefaultX, Y: domain.DefaultY}
		}
		g.AddVertex(name, pos.X, pos.Y)
	}

	for _, road := range roads {
		addCity(road.Source)
		addCity(road.Target)
		g.AddUndirectedEdge(road.Source, road.Target, road.Distance)
	}

	if includeIsolated {
		names := make([]string, 0, len(positions))
		for name := range positions {
			if !g.HasVertex(name) {
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			addCity(name)
		}
	}

	return g
}
