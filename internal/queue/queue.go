// Package queue provides the bounded FIFO of pending events between HTTP
// ingestion and the background processor.
package queue

import (
	"context"
	"sync"

	"github.com/osheron/meritum/internal/domain"
)

// DefaultCapacity is the queue bound when none is configured.
const DefaultCapacity = 10000

// Queue is a bounded multi-producer multi-consumer FIFO of events. Enqueue
// fails fast with domain.ErrQueueFull instead of blocking; Dequeue blocks
// until an event arrives, the context is cancelled, or the queue is closed.
// Events enqueued by a single producer are dequeued in enqueue order.
type Queue struct {
	ch     chan domain.Event
	mu     sync.RWMutex
	closed bool
}

// New creates a queue with the given capacity, falling back to
// DefaultCapacity for non-positive values.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan domain.Event, capacity)}
}

// Enqueue accepts an event or rejects it with domain.ErrQueueFull when the
// capacity would be exceeded.
func (q *Queue) Enqueue(event domain.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return domain.ErrQueueClosed
	}
	select {
	case q.ch <- event:
		return nil
	default:
		return domain.ErrQueueFull
	}
}

// Dequeue returns the next event. The boolean is false when the context was
// cancelled or the queue was closed and drained.
func (q *Queue) Dequeue(ctx context.Context) (domain.Event, bool) {
	select {
	case event, ok := <-q.ch:
		return event, ok
	case <-ctx.Done():
		return domain.Event{}, false
	}
}

// TryDequeue returns the next event without blocking.
func (q *Queue) TryDequeue() (domain.Event, bool) {
	select {
	case event, ok := <-q.ch:
		return event, ok
	default:
		return domain.Event{}, false
	}
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int {
	return cap(q.ch)
}

// Closed reports whether the queue still accepts events.
func (q *Queue) Closed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

// Close rejects further enqueues. Pending events remain dequeueable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
