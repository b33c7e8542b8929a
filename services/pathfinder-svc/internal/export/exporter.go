// Package export renders a search result into downloadable documents:
// JSON, CSV step traces, Excel workbooks, Markdown and PDF summaries.
package export

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"routeviz/pkg/apperror"
	"routeviz/pkg/domain"
	"routeviz/pkg/logger"
	"routeviz/pkg/metrics"
	"routeviz/pkg/telemetry"
	"routeviz/services/pathfinder-svc/internal/engine"
	"routeviz/services/pathfinder-svc/internal/service"
)

// Format формат экспорта
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatExcel    Format = "xlsx"
	FormatMarkdown Format = "markdown"
	FormatPDF      Format = "pdf"
)

// DefaultTitle заголовок отчёта по умолчанию
const DefaultTitle = "Shortest Path Report"

// DefaultAuthor автор отчёта по умолчанию
const DefaultAuthor = "routeviz"

// Extension возвращает расширение файла для формата
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Exporter генератор документа с результатом поиска
type Exporter interface {
	Export(ctx context.Context, report *Report) ([]byte, error)
	Format() Format
}

// Report данные для экспорта
type Report struct {
	Title       string
	Author      string
	GeneratedAt time.Time

	Graph  *domain.Graph
	Result *engine.Result

	SearchID  string
	ElapsedMs float64
	CacheHit  bool
}

// NewReport собирает отчёт из результата поиска
func NewReport(g *domain.Graph, sr *service.SearchResult, author string) *Report {
	r := &Report{
		Author:      author,
		GeneratedAt: time.Now(),
		Graph:       g,
	}
	if sr != nil {
		r.Result = sr.Result
		r.SearchID = sr.SearchID
		r.ElapsedMs = sr.ElapsedMs
		r.CacheHit = sr.CacheHit
	}
	return r
}

var registry = map[Format]func() Exporter{
	FormatJSON:     func() Exporter { return NewJSONExporter() },
	FormatCSV:      func() Exporter { return NewCSVExporter() },
	FormatExcel:    func() Exporter { return NewExcelExporter() },
	FormatMarkdown: func() Exporter { return NewMarkdownExporter() },
	FormatPDF:      func() Exporter { return NewPDFExporter() },
}

// ParseFormat разбирает название формата. "md" и "excel" принимаются как синонимы.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "md":
		name = string(FormatMarkdown)
	case "excel":
		name = string(FormatExcel)
	}

	f := Format(name)
	if _, ok := registry[f]; !ok {
		return "", apperror.NewWithField(apperror.CodeUnsupportedFormat,
			fmt.Sprintf("unsupported export format %q", s), "format")
	}
	return f, nil
}

// New возвращает генератор для формата
func New(format string) (Exporter, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	return registry[f](), nil
}

// Formats возвращает поддерживаемые форматы
func Formats() []Format {
	result := make([]Format, 0, len(registry))
	for f := range registry {
		result = append(result, f)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// Render запускает генератор в отдельном span и записывает метрики
func Render(ctx context.Context, e Exporter, report *Report) ([]byte, error) {
	if report == nil || report.Result == nil {
		return nil, apperror.New(apperror.CodeNilInput, "report has no search result")
	}

	format := string(e.Format())
	start := time.Now()

	var data []byte
	err := telemetry.Trace(ctx, "export."+format, func(ctx context.Context) error {
		var err error
		data, err = e.Export(ctx, report)
		if err != nil {
			return err
		}
		trace.SpanFromContext(ctx).SetAttributes(telemetry.ExportAttributes(format, len(data))...)
		return nil
	}, telemetry.SearchAttributes(report.Result.Source, report.Result.Target,
		string(report.Result.Strategy), string(report.Result.Trace))...)

	m := metrics.Get()
	m.ExportDuration.WithLabelValues(format).Observe(time.Since(start).Seconds())
	m.RecordExport(format, err == nil)

	if err != nil {
		logger.WithContext(ctx).Error("export failed", "format", format, "error", err)
		var appErr *apperror.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.CodeExportFailed, "failed to export "+format)
	}

	logger.WithContext(ctx).Info("export completed", "format", format, "bytes", len(data))
	return data, nil
}
