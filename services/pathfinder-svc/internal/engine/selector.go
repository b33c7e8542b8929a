package engine

import (
	"container/heap"

	"routeviz/pkg/domain"
)

// selector выбирает следующую вершину для посещения.
// Обе реализации выбирают непосещённую вершину с минимальным конечным
// расстоянием, при равенстве - с меньшим индексом вставки.
type selector interface {
	// update сообщает о новом расстоянии вершины i
	update(i int, dist float64)
	// next возвращает индекс следующей вершины или -1,
	// если конечных расстояний среди непосещённых не осталось
	next() int
}

func newSelector(s Strategy, st *state) selector {
	if s == StrategyHeap {
		return newHeapSelector(st)
	}
	return &linearSelector{st: st}
}

// =============================================================================
// Linear scan
// =============================================================================

type linearSelector struct {
	st *state
}

func (l *linearSelector) update(int, float64) {}

func (l *linearSelector) next() int {
	best := -1
	bestDist := domain.Infinity
	for i, d := range l.st.dist {
		if !l.st.visited[i] && d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// =============================================================================
// Binary heap with lazy deletion
// =============================================================================

type heapItem struct {
	index int
	dist  float64
}

// itemQueue min-heap по (dist, index)
type itemQueue []heapItem

func (q itemQueue) Len() int { return len(q) }

func (q itemQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].index < q[j].index
}

func (q itemQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *itemQueue) Push(x any) { *q = append(*q, x.(heapItem)) }

func (q *itemQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

type heapSelector struct {
	st    *state
	queue itemQueue
}

func newHeapSelector(st *state) *heapSelector {
	h := &heapSelector{st: st, queue: make(itemQueue, 0, len(st.dist))}
	for i, d := range st.dist {
		if !domain.IsInfinite(d) {
			h.queue = append(h.queue, heapItem{index: i, dist: d})
		}
	}
	heap.Init(&h.queue)
	return h
}

func (h *heapSelector) update(i int, dist float64) {
	heap.Push(&h.queue, heapItem{index: i, dist: dist})
}

func (h *heapSelector) next() int {
	for h.queue.Len() > 0 {
		item := heap.Pop(&h.queue).(heapItem)
		// Устаревшие записи пропускаются
		if h.st.visited[item.index] || item.dist != h.st.dist[item.index] {
			continue
		}
		return item.index
	}
	return -1
}
