package export

import (
	"context"
	"encoding/json"

	"routeviz/services/pathfinder-svc/internal/engine"
)

// JSONExporter генератор JSON документов
type JSONExporter struct {
	BaseExporter
}

// NewJSONExporter создаёт новый генератор
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format возвращает формат генератора
func (e *JSONExporter) Format() Format {
	return FormatJSON
}

// JSONReport структура JSON документа
type JSONReport struct {
	Metadata JSONMetadata   `json:"metadata"`
	Result   *engine.Result `json:"result"`
	Segments []JSONSegment  `json:"segments"`
}

type JSONMetadata struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	GeneratedAt string  `json:"generated_at"`
	SearchID    string  `json:"search_id,omitempty"`
	ElapsedMs   float64 `json:"elapsed_ms"`
	CacheHit    bool    `json:"cache_hit"`
}

type JSONSegment struct {
	From   string   `json:"from"`
	To     string   `json:"to"`
	Weight *float64 `json:"weight"`
}

// Export генерирует JSON документ. Недостижимые расстояния кодируются как null.
func (e *JSONExporter) Export(ctx context.Context, r *Report) ([]byte, error) {
	doc := JSONReport{
		Metadata: JSONMetadata{
			Title:       e.GetTitle(r),
			Author:      e.GetAuthor(r),
			GeneratedAt: e.GeneratedAt(r).Format("2006-01-02T15:04:05Z07:00"),
			SearchID:    r.SearchID,
			ElapsedMs:   r.ElapsedMs,
			CacheHit:    r.CacheHit,
		},
		Result:   r.Result,
		Segments: []JSONSegment{},
	}
	for _, seg := range e.Segments(r) {
		doc.Segments = append(doc.Segments, JSONSegment{From: seg.From, To: seg.To, Weight: seg.Weight})
	}

	return json.MarshalIndent(doc, "", "  ")
}
