package bridge

import "sync/atomic"

// queue is an unbounded multi-producer single-consumer FIFO.
// push never blocks and pop never allocates or blocks.
type queue[T any] struct {
	head atomic.Pointer[node[T]] // last pushed
	tail *node[T]                // consumer only; already-consumed sentinel
}

type node[T any] struct {
	next atomic.Pointer[node[T]]
	val  T
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{}
	stub := &node[T]{}
	q.head.Store(stub)
	q.tail = stub
	return q
}

func (q *queue[T]) push(v T) {
	n := &node[T]{val: v}
	prev := q.head.Swap(n)
	prev.next.Store(n)
}

// pop returns false when empty. A push that has swapped head but not yet
// linked its node is observed on a later pop.
func (q *queue[T]) pop() (T, bool) {
	var zero T
	next := q.tail.next.Load()
	if next == nil {
		return zero, false
	}
	q.tail = next
	v := next.val
	next.val = zero
	return v, true
}
