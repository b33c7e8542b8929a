package domain

import "math"

// Математические константы
const (
	// Epsilon допуск при сравнении сумм весов
	Epsilon = 1e-9
)

// NoVertex маркер отсутствующей вершины в previous и в шагах трассы.
// Пустая строка поэтому не может быть именем вершины: AddVertex,
// SetVertexPosition и добавление дуг с таким именем ничего не делают.
const NoVertex = ""

// DefaultX, DefaultY позиция вершины, созданной неявно через ребро
const (
	DefaultX = 0.0
	DefaultY = 0.0
)

// Infinity расстояние до недостижимой вершины
var Infinity = math.Inf(1)

// IsInfinite проверяет, что расстояние не достигнуто
func IsInfinite(d float64) bool {
	return math.IsInf(d, 1)
}

// FloatEquals сравнивает два float64 с учётом Epsilon
func FloatEquals(a, b float64) bool {
	if IsInfinite(a) || IsInfinite(b) {
		return IsInfinite(a) && IsInfinite(b)
	}
	return math.Abs(a-b) < Epsilon
}

// FloatLessOrEqual проверяет a <= b с учётом Epsilon
func FloatLessOrEqual(a, b float64) bool {
	return a <= b+Epsilon
}

// IsValidWeight проверяет, что вес дуги пригоден для Дейкстры
func IsValidWeight(w float64) bool {
	return !math.IsNaN(w) && w >= 0
}
