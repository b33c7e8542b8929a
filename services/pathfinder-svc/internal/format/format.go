// Package format renders search results as human-readable text.
package format

import (
	"fmt"
	"strings"

	"routeviz/pkg/domain"
)

// Missing выводится вместо неизвестной величины
const Missing = "—"

// Arrow разделитель городов в пути
const Arrow = " → "

// Segment участок пути. Weight равен nil, если дороги между городами нет.
type Segment struct {
	From   string
	To     string
	Weight *float64
}

// String возвращает участок в виде "A → B: 12 км"
func (s Segment) String() string {
	return s.From + Arrow + s.To + ": " + formatKm(s.Weight)
}

// EdgeWeight возвращает вес дуги a->b, а при её отсутствии - вес b->a
func EdgeWeight(g *domain.Graph, a, b string) (float64, bool) {
	if w, ok := g.Weight(a, b); ok {
		return w, true
	}
	return g.Weight(b, a)
}

// Segments разбивает путь на участки
func Segments(g *domain.Graph, path []string) []Segment {
	if len(path) < 2 {
		return []Segment{}
	}

	segments := make([]Segment, 0, len(path)-1)
	for i := 0; i < len(path)-1; i++ {
		seg := Segment{From: path[i], To: path[i+1]}
		if w, ok := EdgeWeight(g, path[i], path[i+1]); ok {
			seg.Weight = &w
		}
		segments = append(segments, seg)
	}
	return segments
}

// FormatPath возвращает путь в виде "A (5 км) → B (3 км) → C"
func FormatPath(g *domain.Graph, path []string) string {
	if len(path) == 0 {
		return ""
	}

	parts := make([]string, 0, len(path))
	for _, seg := range Segments(g, path) {
		parts = append(parts, fmt.Sprintf("%s (%s)", seg.From, formatKm(seg.Weight)))
	}
	parts = append(parts, path[len(path)-1])

	return strings.Join(parts, Arrow)
}

// FormatElapsed форматирует время поиска в миллисекундах
func FormatElapsed(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.3f мс", ms)
	case ms < 1000:
		return fmt.Sprintf("%.2f мс", ms)
	default:
		return fmt.Sprintf("%.3f с", ms/1000)
	}
}

// FormatDistance форматирует расстояние; nil - неизвестно
func FormatDistance(total *float64) string {
	return formatKm(total)
}

// Summary возвращает текстовый отчёт о найденном пути
func Summary(g *domain.Graph, path []string, total *float64, elapsedMs float64) string {
	if len(path) == 0 {
		return "Путь не найден."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Кратчайший путь: %s (время: %s)\n", formatKm(total), FormatElapsed(elapsedMs))
	b.WriteString(FormatPath(g, path))

	segments := Segments(g, path)
	if len(segments) > 0 {
		b.WriteString("\n\nУчастки:")
		for _, seg := range segments {
			b.WriteString("\n  ")
			b.WriteString(seg.String())
		}
	}
	return b.String()
}

func formatKm(w *float64) string {
	if w == nil || domain.IsInfinite(*w) {
		return Missing
	}
	return fmt.Sprintf("%.0f км", *w)
}
