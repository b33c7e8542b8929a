package export

import (
	"bytes"
	"context"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Листы книги
const (
	SheetSummary   = "Summary"
	SheetSteps     = "Steps"
	SheetDistances = "Distances"
)

// ExcelExporter генератор Excel книг
type ExcelExporter struct {
	BaseExporter
}

// NewExcelExporter создаёт новый генератор
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// Format возвращает формат генератора
func (e *ExcelExporter) Format() Format {
	return FormatExcel
}

// sheetWriter запоминает первую ошибку записи в лист
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (sw *sheetWriter) set(col, row int, value any) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.SetCellValue(sw.sheet, Cell(col, row), value)
}

func (sw *sheetWriter) row(row int, values ...any) {
	for i, v := range values {
		sw.set(i, row, v)
	}
}

func (sw *sheetWriter) style(fromCol, toCol, row, style int) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.SetCellStyle(sw.sheet, Cell(fromCol, row), Cell(toCol, row), style)
}

func (sw *sheetWriter) width(col string, width float64) {
	if sw.err != nil {
		return
	}
	sw.err = sw.f.SetColWidth(sw.sheet, col, col, width)
}

// Export генерирует книгу с листами Summary, Steps и Distances
func (e *ExcelExporter) Export(ctx context.Context, r *Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Дефолтный лист становится сводкой
	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetSteps, SheetDistances} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	writers := []func(*excelize.File, *Report, int) error{
		e.writeSummary,
		e.writeSteps,
		e.writeDistances,
	}
	for _, write := range writers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := write(f, r, headerStyle); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (e *ExcelExporter) writeSummary(f *excelize.File, r *Report, headerStyle int) error {
	sw := &sheetWriter{f: f, sheet: SheetSummary}

	sw.row(1, e.GetTitle(r))
	sw.row(2, "Author", e.GetAuthor(r))
	sw.row(3, "Generated", e.FormatTimestamp(e.GeneratedAt(r)))

	row := 5
	sw.row(row, "Parameter", "Value")
	sw.style(0, 1, row, headerStyle)
	row++
	for _, kv := range e.Summary(r) {
		sw.row(row, kv.Key, kv.Value)
		row++
	}

	segments := e.Segments(r)
	if len(segments) > 0 {
		row++
		sw.row(row, "From", "To", "Distance")
		sw.style(0, 2, row, headerStyle)
		row++
		for _, seg := range segments {
			if seg.Weight != nil {
				sw.row(row, seg.From, seg.To, *seg.Weight)
			} else {
				sw.row(row, seg.From, seg.To, "")
			}
			row++
		}
	}

	sw.width("A", 24)
	sw.width("B", 48)
	return sw.err
}

func (e *ExcelExporter) writeSteps(f *excelize.File, r *Report, headerStyle int) error {
	sw := &sheetWriter{f: f, sheet: SheetSteps}

	header := make([]any, len(stepColumns))
	for i, c := range stepColumns {
		header[i] = c
	}
	sw.row(1, header...)
	sw.style(0, len(stepColumns)-1, 1, headerStyle)

	for i, step := range r.Result.Steps {
		row := i + 2
		sw.set(0, row, i)
		sw.set(1, row, step.Current)
		sw.set(2, row, step.Neighbor)
		if step.NewDistance != nil {
			sw.set(3, row, *step.NewDistance)
		}
		sw.set(4, row, strings.Join(step.Visited, ";"))
	}

	sw.width("E", 40)
	return sw.err
}

func (e *ExcelExporter) writeDistances(f *excelize.File, r *Report, headerStyle int) error {
	sw := &sheetWriter{f: f, sheet: SheetDistances}

	sw.row(1, "City", "Distance", "Previous")
	sw.style(0, 2, 1, headerStyle)

	for i, d := range e.DistanceRows(r) {
		row := i + 2
		if r.Result.Distances.Reachable(d.City) {
			sw.row(row, d.City, r.Result.Distances[d.City], d.Previous)
		} else {
			sw.row(row, d.City, d.Distance, d.Previous)
		}
	}

	sw.width("A", 20)
	return sw.err
}
