package engine

import (
	"encoding/json"
	"math"

	"routeviz/pkg/domain"
)

// Distances расстояния от источника по имени вершины.
// В JSON недостижимые вершины (+Inf) кодируются как null.
type Distances map[string]float64

// MarshalJSON кодирует +Inf как null
func (d Distances) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}

	out := make(map[string]*float64, len(d))
	for name, dist := range d {
		if math.IsInf(dist, 0) || math.IsNaN(dist) {
			out[name] = nil
			continue
		}
		v := dist
		out[name] = &v
	}
	return json.Marshal(out)
}

// UnmarshalJSON декодирует null как +Inf
func (d *Distances) UnmarshalJSON(data []byte) error {
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*d = nil
		return nil
	}

	out := make(Distances, len(raw))
	for name, dist := range raw {
		if dist == nil {
			out[name] = domain.Infinity
			continue
		}
		out[name] = *dist
	}
	*d = out
	return nil
}

// Reachable сообщает, достижима ли вершина
func (d Distances) Reachable(name string) bool {
	dist, ok := d[name]
	return ok && !domain.IsInfinite(dist)
}

// Step одно решение алгоритма: релаксация дуги current->neighbor
// или завершающий шаг на цели (Neighbor пуст).
type Step struct {
	Current     string    `json:"current"`
	Neighbor    string    `json:"neighbor"`
	NewDistance *float64  `json:"new_distance"`
	Distances   Distances `json:"distances"`
	Visited     []string  `json:"visited"`
}

// IsTerminal сообщает, что шаг записан при посещении цели
func (s Step) IsTerminal() bool {
	return s.Neighbor == domain.NoVertex
}

// Improved сообщает, что релаксация улучшила расстояние
func (s Step) Improved() bool {
	return s.NewDistance != nil
}

// RelaxationStats счётчики решений релаксации
type RelaxationStats struct {
	Improved int `json:"improved"`
	Skipped  int `json:"skipped"`
}

// Result результат поиска кратчайшего пути
type Result struct {
	Source   string    `json:"source"`
	Target   string    `json:"target,omitempty"`
	Strategy Strategy  `json:"strategy"`
	Trace    TraceMode `json:"trace"`

	Distances Distances         `json:"distances"`
	Previous  map[string]string `json:"previous"`
	Path      []string          `json:"path"`
	Total     *float64          `json:"total"`
	Steps     []Step            `json:"steps"`

	// Visited порядок посещения вершин
	Visited     []string        `json:"visited"`
	Relaxations RelaxationStats `json:"relaxations"`
}

// Found сообщает, что путь до цели построен
func (r *Result) Found() bool {
	return r.Total != nil && len(r.Path) > 0
}
