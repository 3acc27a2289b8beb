package broadcast

import (
	"context"
	"sync"
)

// Queue decouples a publisher from a slow reader. Its Handle method never
// blocks: when the buffer is full the message is rejected with
// ErrSlowConsumer and Overflow is closed so the reader can give up.
type Queue[T any] struct {
	ch       chan Message[T]
	overflow chan struct{}
	once     sync.Once
}

// NewQueue returns a queue buffering up to size messages (minimum 1).
func NewQueue[T any](size int) *Queue[T] {
	return &Queue[T]{
		ch:       make(chan Message[T], max(size, 1)),
		overflow: make(chan struct{}),
	}
}

// Handle is a Handler that enqueues msg.
func (q *Queue[T]) Handle(_ context.Context, msg Message[T]) error {
	select {
	case q.ch <- msg:
		return nil
	default:
		q.once.Do(func() { close(q.overflow) })
		return ErrSlowConsumer
	}
}

// C returns the receive side. It is never closed; select on the owning
// subscription's Done and on Overflow to stop reading.
func (q *Queue[T]) C() <-chan Message[T] { return q.ch }

// Overflow is closed the first time a message could not be buffered.
func (q *Queue[T]) Overflow() <-chan struct{} { return q.overflow }
