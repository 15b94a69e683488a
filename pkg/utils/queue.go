package utils

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrQueueClosed = errors.New("queue closed")

// Queue is a bounded FIFO with one sending and one receiving goroutine.
//
// Either side can end it. The sender calls Finish when it will not send
// again; the receiver still gets every buffered value before Receive reports
// the channel as closed. The receiver calls Close when it stops listening;
// a sender blocked on a full queue is released with ErrQueueClosed, and
// Drain throws away whatever was left behind.
type Queue[T any] struct {
	items     chan T
	closed    chan struct{}
	finished  atomic.Bool
	closeOnce sync.Once
}

func NewQueue[T any](capacity int) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}

	return &Queue[T]{
		items:  make(chan T, capacity),
		closed: make(chan struct{}),
	}
}

// Send blocks while the queue is full.
func (q *Queue[T]) Send(value T) error {
	if q.finished.Load() {
		return ErrQueueClosed
	}

	select {
	case <-q.closed:
		return ErrQueueClosed
	default:
	}

	select {
	case q.items <- value:
		return nil
	case <-q.closed:
		return ErrQueueClosed
	}
}

// Finish must only be called by the sending goroutine.
func (q *Queue[T]) Finish() {
	if q.finished.CompareAndSwap(false, true) {
		close(q.items)
	}
}

func (q *Queue[T]) Receive() <-chan T {
	return q.items
}

func (q *Queue[T]) Close() {
	q.closeOnce.Do(func() {
		close(q.closed)
	})
}

// Drain discards buffered values without blocking and returns how many
// there were.
func (q *Queue[T]) Drain() int {
	count := 0
	for {
		select {
		case _, ok := <-q.items:
			if !ok {
				return count
			}
			count++
		default:
			return count
		}
	}
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}

func (q *Queue[T]) Cap() int {
	return cap(q.items)
}
