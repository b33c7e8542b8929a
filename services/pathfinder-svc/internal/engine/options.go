package engine

import (
	"fmt"

	"routeviz/pkg/apperror"
)

// Strategy способ выбора следующей вершины
type Strategy string

const (
	// StrategyLinear полный просмотр непосещённых вершин, O(V²)
	StrategyLinear Strategy = "linear"
	// StrategyHeap двоичная куча с ленивым удалением, O((V+E) log V)
	StrategyHeap Strategy = "heap"
)

// TraceMode режим записи трассы
type TraceMode string

const (
	// TraceFull записывает шаг на каждое решение релаксации со снимками состояния
	TraceFull TraceMode = "full"
	// TraceNone не записывает шаги
	TraceNone TraceMode = "none"
)

// ParseStrategy разбирает имя стратегии
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyLinear, "":
		return StrategyLinear, nil
	case StrategyHeap:
		return StrategyHeap, nil
	default:
		return "", apperror.NewWithField(apperror.CodeInvalidOption,
			fmt.Sprintf("unknown strategy %q", s), "strategy")
	}
}

// ParseTraceMode разбирает режим трассы
func ParseTraceMode(s string) (TraceMode, error) {
	switch TraceMode(s) {
	case TraceFull, "":
		return TraceFull, nil
	case TraceNone:
		return TraceNone, nil
	default:
		return "", apperror.NewWithField(apperror.CodeInvalidOption,
			fmt.Sprintf("unknown trace mode %q", s), "trace")
	}
}

// Options параметры запуска поиска
type Options struct {
	Target      string
	Strategy    Strategy
	Trace       TraceMode
	MaxVertices int
}

// Option функциональная опция RunDijkstra
type Option func(*Options)

// WithTarget задаёт целевую вершину. Поиск останавливается, когда она посещена.
func WithTarget(name string) Option {
	return func(o *Options) {
		o.Target = name
	}
}

// WithStrategy задаёт стратегию выбора вершины
func WithStrategy(s Strategy) Option {
	return func(o *Options) {
		o.Strategy = s
	}
}

// WithTrace задаёт режим трассы
func WithTrace(m TraceMode) Option {
	return func(o *Options) {
		o.Trace = m
	}
}

// WithMaxVertices ограничивает размер графа. 0 - без ограничения.
func WithMaxVertices(n int) Option {
	return func(o *Options) {
		o.MaxVertices = n
	}
}

func defaultOptions() Options {
	return Options{
		Strategy: StrategyLinear,
		Trace:    TraceFull,
	}
}

func (o Options) validate() error {
	if _, err := ParseStrategy(string(o.Strategy)); err != nil {
		return err
	}
	if _, err := ParseTraceMode(string(o.Trace)); err != nil {
		return err
	}
	if o.MaxVertices < 0 {
		return apperror.NewWithField(apperror.CodeInvalidOption,
			"max vertices must not be negative", "max_vertices")
	}
	return nil
}
