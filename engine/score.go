package engine

import (
	"sync"
	"time"
)

// monotonicClock produces the default member scores: the current Unix time
// in microseconds, bumped by one whenever the wall clock has not advanced
// since the previous call. Scores are strictly increasing within a process,
// so members added without an explicit score keep their insertion order.
// Microseconds stay exactly representable in a float64 sorted-set score
// for the next couple of centuries.
type monotonicClock struct {
	mu   sync.Mutex
	last int64
}

func (c *monotonicClock) Next() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now().UnixMicro()
	if now <= c.last {
		now = c.last + 1
	}
	c.last = now
	return float64(now)
}
