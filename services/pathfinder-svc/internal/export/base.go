package export

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"routeviz/pkg/domain"
	"routeviz/services/pathfinder-svc/internal/engine"
	"routeviz/services/pathfinder-svc/internal/format"
)

// stepColumns колонки таблицы шагов
var stepColumns = []string{"index", "current", "neighbor", "new_distance", "visited"}

// BaseExporter общие методы генераторов
type BaseExporter struct{}

// GetTitle возвращает заголовок отчёта
func (b *BaseExporter) GetTitle(r *Report) string {
	if r.Title != "" {
		return r.Title
	}
	return DefaultTitle
}

// GetAuthor возвращает автора отчёта
func (b *BaseExporter) GetAuthor(r *Report) string {
	if r.Author != "" {
		return r.Author
	}
	return DefaultAuthor
}

// GeneratedAt возвращает время формирования отчёта
func (b *BaseExporter) GeneratedAt(r *Report) time.Time {
	if r.GeneratedAt.IsZero() {
		return time.Now()
	}
	return r.GeneratedAt
}

// FormatTimestamp форматирует время
func (b *BaseExporter) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// FormatFloat форматирует число; бесконечность выводится как прочерк
func (b *BaseExporter) FormatFloat(v float64) string {
	if domain.IsInfinite(v) {
		return format.Missing
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// summaryRow строка сводки "параметр - значение"
type summaryRow struct {
	Key   string
	Value string
}

// Summary возвращает сводку по результату
func (b *BaseExporter) Summary(r *Report) []summaryRow {
	res := r.Result
	rows := []summaryRow{
		{"Source", res.Source},
		{"Target", valueOrMissing(res.Target)},
		{"Strategy", string(res.Strategy)},
		{"Trace", string(res.Trace)},
		{"Total", format.FormatDistance(res.Total)},
		{"Path", b.PathText(r)},
		{"Elapsed", format.FormatElapsed(r.ElapsedMs)},
		{"Steps", strconv.Itoa(len(res.Steps))},
		{"Visited", strconv.Itoa(len(res.Visited))},
		{"Improved relaxations", strconv.Itoa(res.Relaxations.Improved)},
		{"Skipped relaxations", strconv.Itoa(res.Relaxations.Skipped)},
		{"Cache hit", strconv.FormatBool(r.CacheHit)},
	}
	if r.SearchID != "" {
		rows = append(rows, summaryRow{"Search ID", r.SearchID})
	}
	return rows
}

// PathText возвращает путь одной строкой
func (b *BaseExporter) PathText(r *Report) string {
	if len(r.Result.Path) == 0 {
		return format.Missing
	}
	if r.Graph == nil {
		return strings.Join(r.Result.Path, format.Arrow)
	}
	return format.FormatPath(r.Graph, r.Result.Path)
}

// Segments возвращает участки пути
func (b *BaseExporter) Segments(r *Report) []format.Segment {
	if r.Graph == nil {
		return []format.Segment{}
	}
	return format.Segments(r.Graph, r.Result.Path)
}

// StepRow возвращает строку таблицы шагов в порядке stepColumns
func (b *BaseExporter) StepRow(index int, s engine.Step) []string {
	newDistance := ""
	if s.NewDistance != nil {
		newDistance = b.FormatFloat(*s.NewDistance)
	}
	return []string{
		strconv.Itoa(index),
		s.Current,
		s.Neighbor,
		newDistance,
		strings.Join(s.Visited, ";"),
	}
}

// distanceRow строка таблицы расстояний
type distanceRow struct {
	City     string
	Distance string
	Previous string
}

// DistanceRows возвращает итоговые расстояния: сначала достижимые по возрастанию, затем остальные по имени
func (b *BaseExporter) DistanceRows(r *Report) []distanceRow {
	res := r.Result
	names := make([]string, 0, len(res.Distances))
	for name := range res.Distances {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		di, dj := res.Distances[names[i]], res.Distances[names[j]]
		if di != dj {
			return di < dj
		}
		return names[i] < names[j]
	})

	rows := make([]distanceRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, distanceRow{
			City:     name,
			Distance: b.FormatFloat(res.Distances[name]),
			Previous: valueOrMissing(res.Previous[name]),
		})
	}
	return rows
}

// ColName преобразует индекс колонки в буквенное обозначение (0 -> A, 25 -> Z, 26 -> AA)
func ColName(index int) string {
	result := ""
	for {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}

// Cell возвращает адрес ячейки по индексам колонки и строки
func Cell(colIndex, row int) string {
	return fmt.Sprintf("%s%d", ColName(colIndex), row)
}

func valueOrMissing(s string) string {
	if s == domain.NoVertex {
		return format.Missing
	}
	return s
}
