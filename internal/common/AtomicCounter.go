package common

import (
	"sync/atomic"
)

// AtomicCounter is a shared counter safe for concurrent workers.
type AtomicCounter struct {
	count atomic.Int64
}

func (ac *AtomicCounter) Add(delta int64) int64 {
	return ac.count.Add(delta)
}

func (ac *AtomicCounter) Incr() int64 {
	return ac.count.Add(1)
}

func (ac *AtomicCounter) Read() int64 {
	return ac.count.Load()
}
