// Package pqueue provides a bounded priority queue ordered by a caller
// supplied comparison. Elements that compare equal leave the queue in the
// order they entered it.
package pqueue

import (
	"container/heap"

	cerrors "github.com/vnykmshr/chrono/pkg/common/errors"
)

// ErrFull is returned by Enqueue when the queue is at capacity.
var ErrFull = cerrors.NewOperationError("pqueue", "Enqueue", cerrors.ErrCapacityExceeded)

type entry[T any] struct {
	value T
	seq   uint64
	index int
}

// entries implements heap.Interface.
type entries[T any] struct {
	items []*entry[T]
	less  func(a, b T) bool
}

func (h *entries[T]) Len() int { return len(h.items) }

func (h *entries[T]) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	if h.less(a.value, b.value) {
		return true
	}
	if h.less(b.value, a.value) {
		return false
	}
	return a.seq < b.seq
}

func (h *entries[T]) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].index = i
	h.items[j].index = j
}

func (h *entries[T]) Push(x any) {
	e := x.(*entry[T])
	e.index = len(h.items)
	h.items = append(h.items, e)
}

func (h *entries[T]) Pop() any {
	old := h.items
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	h.items = old[:n-1]
	return e
}

// Queue is a min-priority queue. It is not safe for concurrent use.
type Queue[T any] struct {
	h        *entries[T]
	capacity int
	seq      uint64
}

// New creates an empty queue ordered by less. A capacity of zero means
// the queue is unbounded. New panics if less is nil.
func New[T any](less func(a, b T) bool, capacity int) *Queue[T] {
	if less == nil {
		panic("pqueue: nil comparison")
	}
	if capacity < 0 {
		panic("pqueue: negative capacity")
	}
	return &Queue[T]{
		h:        &entries[T]{less: less},
		capacity: capacity,
	}
}

// Enqueue inserts v. It returns ErrFull if the queue is at capacity.
func (q *Queue[T]) Enqueue(v T) error {
	if q.capacity > 0 && q.h.Len() >= q.capacity {
		return ErrFull
	}
	q.seq++
	heap.Push(q.h, &entry[T]{value: v, seq: q.seq})
	return nil
}

// Dequeue removes and returns the minimum element. It panics if the queue
// is empty.
func (q *Queue[T]) Dequeue() T {
	if q.h.Len() == 0 {
		panic("pqueue: dequeue from empty queue")
	}
	return heap.Pop(q.h).(*entry[T]).value
}

// Peek returns the minimum element without removing it.
func (q *Queue[T]) Peek() (T, bool) {
	if q.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return q.h.items[0].value, true
}

// Erase removes the earliest-ordered element for which match returns true.
func (q *Queue[T]) Erase(match func(T) bool) (T, bool) {
	var found *entry[T]
	for _, e := range q.h.items {
		if !match(e.value) {
			continue
		}
		if found == nil || q.h.Less(e.index, found.index) {
			found = e
		}
	}
	if found == nil {
		var zero T
		return zero, false
	}
	heap.Remove(q.h, found.index)
	return found.value, true
}

// IsEmpty reports whether the queue holds no elements.
func (q *Queue[T]) IsEmpty() bool {
	return q.h.Len() == 0
}

// Size returns the number of queued elements.
func (q *Queue[T]) Size() int {
	return q.h.Len()
}

// Cap returns the queue capacity, zero if unbounded.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// Drain removes every element and returns them in queue order.
func (q *Queue[T]) Drain() []T {
	out := make([]T, 0, q.h.Len())
	for q.h.Len() > 0 {
		out = append(out, q.Dequeue())
	}
	return out
}

// Snapshot returns the queued elements in queue order without removing
// them.
func (q *Queue[T]) Snapshot() []T {
	cp := &entries[T]{less: q.h.less, items: make([]*entry[T], len(q.h.items))}
	for i, e := range q.h.items {
		c := *e
		cp.items[i] = &c
	}

	out := make([]T, 0, cp.Len())
	for cp.Len() > 0 {
		out = append(out, heap.Pop(cp).(*entry[T]).value)
	}
	return out
}
