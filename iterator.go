package handoffq

import (
	"context"
	"iter"
)

// Elements returns a sequence draining the queue: each step is an untimed
// Next, so ranging blocks whenever the queue is empty. The sequence ends
// normally when Clear aborts the pending claim; until then it is infinite.
// Each call starts a fresh sequence, and values consumed by one sequence are
// never seen by another.
func (q *Queue[T]) Elements() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			value, err := q.Next(context.Background())
			if err != nil {
				// Only ErrCleared can happen without a deadline; it marks
				// end-of-sequence, not a failure.
				return
			}
			if !yield(value) {
				return
			}
		}
	}
}
