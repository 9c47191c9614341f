package queue

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node is a single element of the linked list
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// MPSC is a bounded, lock-free multi-producer single-consumer queue.
// Producers append to a linked list with atomic operations, a consumer goroutine moves
// the items to the channel returned by Recv.
//
// Thread-safety: Push, Len, Close and IsClosed can be called from any goroutine.
// Recv must be consumed by a single goroutine.
type MPSC[T any] struct {
	head    atomic.Pointer[node[T]]
	tail    atomic.Pointer[node[T]]
	out     chan T
	wake    chan struct{} // buffered (1), a pending token is never lost
	closed  atomic.Bool
	pending atomic.Int64
	limit   int64

	consumer sync.WaitGroup
}

// NewMPSC creates a queue that accepts at most limit pending items (limit <= 0 means unbounded)
func NewMPSC[T any](limit int) *MPSC[T] {
	sentinel := &node[T]{}

	q := &MPSC[T]{
		out:   make(chan T),
		wake:  make(chan struct{}, 1),
		limit: int64(limit),
	}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.consumer.Add(1)
	go q.consume()

	return q
}

// Push appends value to the queue.
// Returns false if the queue is closed or limit items are already pending.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *MPSC[T]) Push(value T) bool {
	if q.closed.Load() {
		return false
	}
	if n := q.pending.Add(1); q.limit > 0 && n > q.limit {
		q.pending.Add(-1)
		return false
	}

	newNode := &node[T]{value: value}
	var backoff uint8 = 0

	for {
		tailNode := q.tail.Load()
		next := tailNode.next.Load()
		if next == nil {
			if tailNode.next.CompareAndSwap(nil, newNode) {
				/*
				 Note: this CAS may fail if another producer already moved the tail,
				 the tail is updated eventually either way
				*/
				q.tail.CompareAndSwap(tailNode, newNode)
				q.signal()
				return true
			}
		} else {
			// another producer appended but did not move the tail yet
			q.tail.CompareAndSwap(tailNode, next)
		}

		// spin a few times at low contention, yield at high contention
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// signal wakes the consumer without blocking
func (q *MPSC[T]) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// consume moves items from the list to the out channel until the queue is closed
func (q *MPSC[T]) consume() {
	defer q.consumer.Done()
	defer close(q.out)

	for {
		q.drain()
		if q.closed.Load() {
			// items appended between the last drain and Close
			q.drain()
			return
		}
		<-q.wake
	}
}

// drain delivers all items currently in the list
func (q *MPSC[T]) drain() {
	var zero T
	for {
		head := q.head.Load()
		next := head.next.Load()
		if next == nil {
			return
		}

		value := next.value
		next.value = zero // help gc, next becomes the new sentinel
		q.head.Store(next)

		q.out <- value
		q.pending.Add(-1)
	}
}

// Recv returns the channel the items are delivered on. It is closed after Close once all
// pending items were delivered.
func (q *MPSC[T]) Recv() <-chan T {
	return q.out
}

// Close prevents further pushes. Pending items are still delivered.
func (q *MPSC[T]) Close() {
	q.closed.Store(true)
	q.signal()
}

// IsClosed returns true if the queue is closed
func (q *MPSC[T]) IsClosed() bool {
	return q.closed.Load()
}

// Len returns the number of items pushed but not yet received
func (q *MPSC[T]) Len() int {
	return int(q.pending.Load())
}
