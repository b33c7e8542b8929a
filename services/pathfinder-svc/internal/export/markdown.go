package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
)

// MarkdownExporter генератор Markdown отчётов
type MarkdownExporter struct {
	BaseExporter
}

// NewMarkdownExporter создаёт новый генератор
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Format возвращает формат генератора
func (e *MarkdownExporter) Format() Format {
	return FormatMarkdown
}

// Export генерирует Markdown отчёт: сводка, участки пути, шаги и расстояния
func (e *MarkdownExporter) Export(ctx context.Context, r *Report) ([]byte, error) {
	var buf bytes.Buffer

	e.writeHeader(&buf, r)
	e.writeSummary(&buf, r)
	e.writeSegments(&buf, r)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.writeSteps(&buf, r)
	e.writeDistances(&buf, r)

	return buf.Bytes(), nil
}

func (e *MarkdownExporter) writeHeader(buf *bytes.Buffer, r *Report) {
	fmt.Fprintf(buf, "# %s\n\n", e.GetTitle(r))
	fmt.Fprintf(buf, "- **Generated:** %s\n", e.FormatTimestamp(e.GeneratedAt(r)))
	fmt.Fprintf(buf, "- **Author:** %s\n", e.GetAuthor(r))
	buf.WriteString("\n---\n\n")
}

func (e *MarkdownExporter) writeSummary(buf *bytes.Buffer, r *Report) {
	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Parameter | Value |\n")
	buf.WriteString("|-----------|-------|\n")
	for _, kv := range e.Summary(r) {
		fmt.Fprintf(buf, "| %s | %s |\n", kv.Key, escapeCell(kv.Value))
	}
	buf.WriteString("\n")
}

func (e *MarkdownExporter) writeSegments(buf *bytes.Buffer, r *Report) {
	segments := e.Segments(r)
	if len(segments) == 0 {
		return
	}

	buf.WriteString("## Route\n\n")
	for i, seg := range segments {
		fmt.Fprintf(buf, "%d. %s\n", i+1, seg.String())
	}
	buf.WriteString("\n")
}

func (e *MarkdownExporter) writeSteps(buf *bytes.Buffer, r *Report) {
	buf.WriteString("## Steps\n\n")
	if len(r.Result.Steps) == 0 {
		buf.WriteString("_Trace was not recorded._\n\n")
		return
	}

	buf.WriteString("| " + strings.Join(stepColumns, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat("---|", len(stepColumns)) + "\n")
	for i, step := range r.Result.Steps {
		cells := e.StepRow(i, step)
		for j := range cells {
			cells[j] = escapeCell(cells[j])
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	buf.WriteString("\n")
}

func (e *MarkdownExporter) writeDistances(buf *bytes.Buffer, r *Report) {
	buf.WriteString("## Distances\n\n")
	buf.WriteString("| City | Distance | Previous |\n")
	buf.WriteString("|------|----------|----------|\n")
	for _, d := range e.DistanceRows(r) {
		fmt.Fprintf(buf, "| %s | %s | %s |\n", escapeCell(d.City), d.Distance, escapeCell(d.Previous))
	}
	buf.WriteString("\n")
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
