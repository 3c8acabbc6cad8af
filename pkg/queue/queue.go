// Package queue provides the unbounded point-to-point queues connecting
// pipeline stages. Reads are non-blocking; consumers poll and sleep so that
// every loop iteration re-checks its exit condition. FIFO order is preserved
// within a single queue, never across queues.
package queue

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Push once the queue has been closed. A closed
// queue is a process-fatal condition for the stage that owns it.
var ErrClosed = errors.New("queue is closed")

// Queue is an unbounded FIFO queue. Push never blocks and TryPop never
// waits; producers intentionally run ahead of consumers.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends an item. It fails only if the queue has been closed.
func (q *Queue[T]) Push(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.items = append(q.items, v)
	return nil
}

// TryPop removes and returns the oldest item, or reports false when the
// queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	v := q.items[0]
	// Shift rather than re-slice so consumed items are released.
	copy(q.items, q.items[1:])
	q.items[len(q.items)-1] = zero
	q.items = q.items[:len(q.items)-1]
	return v, true
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close rejects further pushes. Queued items remain poppable.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
