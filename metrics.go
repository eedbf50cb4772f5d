package sandsnake

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordAdd is called after each add operation.
	RecordAdd(duration time.Duration, err error)

	// RecordRemove is called after each remove operation.
	RecordRemove(duration time.Duration, err error)

	// RecordRange is called after each rank-, score-range or union query.
	// results is the number of members returned.
	RecordRange(results int, duration time.Duration, err error)

	// RecordCount is called after each count operation.
	RecordCount(duration time.Duration, err error)

	// RecordRemoveIndex is called after each index removal.
	RecordRemoveIndex(duration time.Duration, err error)

	// RecordIndexes is called after each index listing.
	RecordIndexes(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAdd(time.Duration, error)         {}
func (NoopMetricsCollector) RecordRemove(time.Duration, error)      {}
func (NoopMetricsCollector) RecordRange(int, time.Duration, error)  {}
func (NoopMetricsCollector) RecordCount(time.Duration, error)       {}
func (NoopMetricsCollector) RecordRemoveIndex(time.Duration, error) {}
func (NoopMetricsCollector) RecordIndexes(time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AddCount         atomic.Int64
	AddErrors        atomic.Int64
	AddTotalNanos    atomic.Int64
	RemoveCount      atomic.Int64
	RemoveErrors     atomic.Int64
	RangeCount       atomic.Int64
	RangeErrors      atomic.Int64
	RangeResults     atomic.Int64
	RangeTotalNanos  atomic.Int64
	CountCount       atomic.Int64
	CountErrors      atomic.Int64
	RemoveIndexCount atomic.Int64
	RemoveIndexErrs  atomic.Int64
	IndexesCount     atomic.Int64
	IndexesErrors    atomic.Int64
}

// RecordAdd implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAdd(duration time.Duration, err error) {
	b.AddCount.Add(1)
	b.AddTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AddErrors.Add(1)
	}
}

// RecordRemove implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemove(_ time.Duration, err error) {
	b.RemoveCount.Add(1)
	if err != nil {
		b.RemoveErrors.Add(1)
	}
}

// RecordRange implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRange(results int, duration time.Duration, err error) {
	b.RangeCount.Add(1)
	b.RangeResults.Add(int64(results))
	b.RangeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RangeErrors.Add(1)
	}
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(_ time.Duration, err error) {
	b.CountCount.Add(1)
	if err != nil {
		b.CountErrors.Add(1)
	}
}

// RecordRemoveIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRemoveIndex(_ time.Duration, err error) {
	b.RemoveIndexCount.Add(1)
	if err != nil {
		b.RemoveIndexErrs.Add(1)
	}
}

// RecordIndexes implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIndexes(_ time.Duration, err error) {
	b.IndexesCount.Add(1)
	if err != nil {
		b.IndexesErrors.Add(1)
	}
}

// MetricsStats is a point-in-time snapshot of a BasicMetricsCollector.
type MetricsStats struct {
	AddCount      int64
	AddErrors     int64
	AddAvgNanos   int64
	RangeCount    int64
	RangeErrors   int64
	RangeAvgNanos int64
}

// Stats returns a snapshot of the collected counters.
func (b *BasicMetricsCollector) Stats() MetricsStats {
	s := MetricsStats{
		AddCount:    b.AddCount.Load(),
		AddErrors:   b.AddErrors.Load(),
		RangeCount:  b.RangeCount.Load(),
		RangeErrors: b.RangeErrors.Load(),
	}
	if s.AddCount > 0 {
		s.AddAvgNanos = b.AddTotalNanos.Load() / s.AddCount
	}
	if s.RangeCount > 0 {
		s.RangeAvgNanos = b.RangeTotalNanos.Load() / s.RangeCount
	}
	return s
}
