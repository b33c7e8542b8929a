package export

import (
	"bytes"
	"context"
	"encoding/csv"
)

// CSVExporter генератор CSV с трассой шагов
type CSVExporter struct {
	BaseExporter
}

// NewCSVExporter создаёт новый генератор
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Format возвращает формат генератора
func (e *CSVExporter) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Export генерирует CSV: одна строка на шаг алгоритма
func (e *CSVExporter) Export(ctx context.Context, r *Report) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write(stepColumns)
	for i, step := range r.Result.Steps {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		cw.Write(e.StepRow(i, step))
	}
	cw.Flush()

	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
