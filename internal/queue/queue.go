// Package queue provides the multi-producer, single-consumer queue used to
// hand events between hook goroutines and the host tick.
package queue

import (
	"context"
	"sync"
)

// Queue is a non-blocking MPSC queue. Send never blocks. By default the
// queue is unbounded; a bounded queue drops its oldest item when full.
type Queue[T any] struct {
	mu      sync.Mutex
	items   []T
	limit   int
	dropped uint64
	closed  bool
	notify  chan struct{}
}

// New returns an unbounded queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{notify: make(chan struct{}, 1)}
}

// NewBounded returns a queue holding at most limit items. A limit of zero
// or less yields an unbounded queue.
func NewBounded[T any](limit int) *Queue[T] {
	q := New[T]()
	if limit > 0 {
		q.limit = limit
	}
	return q
}

// Send enqueues v. It reports false if the queue has been closed.
func (q *Queue[T]) Send(v T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.limit > 0 && len(q.items) >= q.limit {
		var zero T
		q.items[0] = zero
		q.items = q.items[1:]
		q.dropped++
	}
	q.items = append(q.items, v)
	select {
	case q.notify <- struct{}{}:
	default:
	}
	q.mu.Unlock()
	return true
}

// TryDrain removes and returns every buffered item in arrival order. It
// returns nil when nothing is buffered.
func (q *Queue[T]) TryDrain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Recv blocks until an item is available, the queue is closed and empty,
// or ctx is done. ok is false in the latter two cases.
func (q *Queue[T]) Recv(ctx context.Context) (v T, ok bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v = q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, true
		}
		closed := q.closed
		q.mu.Unlock()
		if closed {
			return v, false
		}

		select {
		case <-q.notify:
		case <-ctx.Done():
			return v, false
		}
	}
}

// Close stops accepting new items. Buffered items can still be received.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.notify)
	q.mu.Unlock()
}

// Len returns the number of buffered items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many items a bounded queue has discarded.
func (q *Queue[T]) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
