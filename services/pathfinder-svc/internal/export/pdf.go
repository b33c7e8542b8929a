package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// maxPDFSteps ограничение таблицы шагов в PDF
const maxPDFSteps = 40

// PDFExporter генератор PDF отчётов
type PDFExporter struct {
	BaseExporter
}

// NewPDFExporter создаёт новый генератор
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Format возвращает формат генератора
func (e *PDFExporter) Format() Format {
	return FormatPDF
}

// Стили
var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   4,
	}

	normalStyle = props.Text{
		Size: 10,
	}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// Export генерирует PDF со сводкой маршрута
func (e *PDFExporter) Export(ctx context.Context, r *Report) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	e.addHeader(m, r)
	e.addMetrics(m, r)
	e.addRoute(m, r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.addSteps(m, r)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

func (e *PDFExporter) addHeader(m core.Maroto, r *Report) {
	m.AddRow(12, text.NewCol(12, e.GetTitle(r), titleStyle))
	m.AddRow(5, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, "Author: "+e.GetAuthor(r), smallStyle),
		text.NewCol(6, "Generated: "+e.FormatTimestamp(e.GeneratedAt(r)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	m.AddRow(6)
}

func (e *PDFExporter) addMetrics(m core.Maroto, r *Report) {
	e.addSection(m, "Search")

	res := r.Result
	cards := []struct{ Label, Value string }{
		{"Total", plainDistance(res.Total)},
		{"Steps", fmt.Sprintf("%d", len(res.Steps))},
		{"Visited", fmt.Sprintf("%d", len(res.Visited))},
		{"Elapsed, ms", fmt.Sprintf("%.3f", r.ElapsedMs)},
	}

	cols := make([]core.Col, 0, len(cards))
	for _, c := range cards {
		cols = append(cols, col.New(3).Add(
			text.New(c.Value, metricValueStyle),
			text.New(c.Label, metricLabelStyle),
		))
	}
	m.AddRow(18, cols...)

	for _, kv := range [][2]string{
		{"Source", res.Source},
		{"Target", plainName(res.Target)},
		{"Strategy", string(res.Strategy)},
	} {
		m.AddRow(6,
			text.NewCol(4, kv[0], boldStyle),
			text.NewCol(8, kv[1], normalStyle),
		)
	}
}

func (e *PDFExporter) addRoute(m core.Maroto, r *Report) {
	e.addSection(m, "Route")

	if len(r.Result.Path) == 0 {
		m.AddRow(6, text.NewCol(12, "Path not found", normalStyle))
		return
	}

	m.AddRow(8, text.NewCol(12, strings.Join(r.Result.Path, " -> "), normalStyle))

	segments := e.Segments(r)
	if len(segments) == 0 {
		return
	}
	e.addTableHeader(m, "From", "To", "Distance")
	for _, seg := range segments {
		e.addTableRow(m, seg.From, seg.To, plainDistance(seg.Weight))
	}
}

func (e *PDFExporter) addSteps(m core.Maroto, r *Report) {
	steps := r.Result.Steps
	if len(steps) == 0 {
		return
	}

	e.addSection(m, "Steps")
	e.addTableHeader(m, "#", "Current", "Neighbor", "New distance")
	for i, step := range steps {
		if i == maxPDFSteps {
			m.AddRow(6, text.NewCol(12,
				fmt.Sprintf("... and %d more steps", len(steps)-maxPDFSteps), smallStyle))
			break
		}
		row := e.StepRow(i, step)
		e.addTableRow(m, row[0], row[1], row[2], row[3])
	}
}

func (e *PDFExporter) addSection(m core.Maroto, title string) {
	m.AddRow(10, text.NewCol(12, title, h2Style))
	m.AddRow(2, line.NewCol(12, props.Line{Color: primaryColor}))
	m.AddRow(4)
}

func (e *PDFExporter) addTableHeader(m core.Maroto, titles ...string) {
	size := 12 / len(titles)
	cols := make([]core.Col, 0, len(titles))
	for _, t := range titles {
		cols = append(cols, text.NewCol(size, t, tableHeaderTextStyle).WithStyle(tableHeaderStyle))
	}
	m.AddRow(8, cols...)
}

func (e *PDFExporter) addTableRow(m core.Maroto, values ...string) {
	size := 12 / len(values)
	cols := make([]core.Col, 0, len(values))
	for _, v := range values {
		cols = append(cols, text.NewCol(size, v, tableCellTextStyle).WithStyle(tableCellStyle))
	}
	m.AddRow(7, cols...)
}

// plainDistance форматирует расстояние без кириллицы: встроенные шрифты PDF её не содержат
func plainDistance(w *float64) string {
	if w == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f km", *w)
}

func plainName(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
