package handoffq

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// waiter is a single pending claim. Its channel is buffered so the resolving
// side never blocks, and done guarantees it is resolved at most once even when
// fulfillment races a timeout or Clear.
type waiter[T any] struct {
	ch   chan outcome[T]
	done bool // guarded by Queue.mu
}

type outcome[T any] struct {
	value T
	err   error
}

// Queue is a FIFO handoff queue for values of type T. The zero value is not
// usable; construct with New. All methods are safe for concurrent use.
type Queue[T any] struct {
	mu       sync.Mutex
	buffered []T
	waiters  []*waiter[T]
}

// New returns a Queue pre-seeded with the given values in order, so the first
// seed value is the first delivered.
func New[T any](initial ...T) *Queue[T] {
	q := &Queue[T]{}
	if len(initial) > 0 {
		q.buffered = append(q.buffered, initial...)
	}
	return q
}

// Add enqueues a value. If a consumer is blocked in Next, the oldest one
// receives the value directly and nothing is buffered; otherwise the value is
// appended to the buffer. Add never fails and resolves at most one waiter.
func (q *Queue[T]) Add(value T) {
	q.mu.Lock()
	if w := q.popWaiter(); w != nil {
		q.mu.Unlock()
		w.ch <- outcome[T]{value: value}
		return
	}
	q.buffered = append(q.buffered, value)
	q.mu.Unlock()
}

// AddDeferred enqueues the result of a computation that is not ready yet.
// resolve runs on its own goroutine and the resolved value is added once it
// returns; consumers only ever observe the value, never the pending handle.
// Ordering is by resolution time, not by the AddDeferred call.
func (q *Queue[T]) AddDeferred(resolve func() T) {
	go func() {
		q.Add(resolve())
	}()
}

// Next removes and returns the oldest buffered value, or blocks until a value
// is added, the queue is cleared (ErrCleared), or ctx ends. A context deadline
// maps to ErrTimeout; plain cancellation returns ctx.Err(). A value delivered
// concurrently with ctx expiry wins: the value is returned and no error.
func (q *Queue[T]) Next(ctx context.Context) (T, error) {
	q.mu.Lock()
	if len(q.buffered) > 0 {
		value := q.buffered[0]
		q.buffered = q.buffered[1:]
		q.mu.Unlock()
		return value, nil
	}
	w := &waiter[T]{ch: make(chan outcome[T], 1)}
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	select {
	case out := <-w.ch:
		return out.value, out.err
	case <-ctx.Done():
		q.mu.Lock()
		if w.done {
			// Resolved between ctx firing and us taking the lock.
			q.mu.Unlock()
			out := <-w.ch
			return out.value, out.err
		}
		w.done = true
		q.removeWaiter(w)
		q.mu.Unlock()

		var zero T
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return zero, ErrTimeout
		}
		return zero, ctx.Err()
	}
}

// NextTimeout is Next with a duration deadline. A timeout <= 0 arms no timer
// and waits indefinitely until a value arrives or the queue is cleared.
func (q *Queue[T]) NextTimeout(timeout time.Duration) (T, error) {
	if timeout <= 0 {
		return q.Next(context.Background())
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return q.Next(ctx)
}

// Peek returns the oldest buffered value without removing it. The second
// return is false when nothing is buffered. Peek never inspects waiters.
func (q *Queue[T]) Peek() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buffered) == 0 {
		var zero T
		return zero, false
	}
	return q.buffered[0], true
}

// Size reports the number of buffered values only. Consumers blocked in Next
// are deliberately excluded: a queue can report 0 while claims are pending.
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buffered)
}

// IsEmpty reports whether Size is zero.
func (q *Queue[T]) IsEmpty() bool {
	return q.Size() == 0
}

// Waiting reports the number of consumers currently blocked in Next.
func (q *Queue[T]) Waiting() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

// Clear discards all buffered values and aborts every pending waiter with
// ErrCleared. The queue is immediately reusable; there is no closed state.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	aborted := q.waiters
	q.waiters = nil
	q.buffered = nil
	for _, w := range aborted {
		w.done = true
	}
	q.mu.Unlock()

	for _, w := range aborted {
		w.ch <- outcome[T]{err: ErrCleared}
	}
}

// popWaiter detaches and returns the oldest still-pending waiter, or nil.
// Callers must hold q.mu.
func (q *Queue[T]) popWaiter() *waiter[T] {
	if len(q.waiters) == 0 {
		return nil
	}
	w := q.waiters[0]
	q.waiters = q.waiters[1:]
	w.done = true
	return w
}

// removeWaiter unlinks w from the pending list, preserving order of the rest.
// Callers must hold q.mu.
func (q *Queue[T]) removeWaiter(w *waiter[T]) {
	for i, cand := range q.waiters {
		if cand == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return
		}
	}
}
