package utils

import "sync/atomic"

// Counter is a process-wide progress counter shared by worker threads.
// Incremented once per completed work item; observers read a snapshot.
type Counter struct {
	n atomic.Int64
}

func (c *Counter) Reset() {
	c.n.Store(0)
}

func (c *Counter) Increment() {
	c.n.Add(1)
}

func (c *Counter) Count() int {
	return int(c.n.Load())
}
