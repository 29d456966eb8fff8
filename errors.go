package handoffq

import (
	"github.com/pkg/errors"
)

var (
	// ErrTimeout is returned by Next when the caller's deadline elapses before
	// a value arrives. Only the expired waiter is affected; buffered values and
	// other waiters are untouched.
	ErrTimeout = errors.New("Timeout")

	// ErrCleared is returned to every waiter pending at the moment Clear is
	// called. It signals cancellation, not queue failure: the queue is usable
	// again immediately.
	ErrCleared = errors.New("Queue cleared")
)
