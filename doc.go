// Package handoffq implements an in-process FIFO handoff queue bridging
// asynchronous producers and consumers without polling.
//
// A Queue holds two opposing sequences: values added but not yet claimed, and
// consumers blocked in Next waiting for a value. At most one of the two is
// non-empty at any instant. Add fulfills the oldest waiter directly when one
// exists; Next pops the oldest buffered value immediately when one exists.
// Each value is delivered exactly once, in arrival order, to claims ordered by
// registration time.
//
// A consumer that must not block forever should pass a context with a deadline
// to Next (or use NextTimeout); a queue dropped with waiters still registered
// leaves those goroutines blocked until their contexts end.
package handoffq
