// Package backend defines the capability contract every concrete sandsnake
// backend implements. The engine consumes this interface without knowledge
// of the underlying store or topology.
package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/hupe1980/sandsnake/store"
)

// Member is a single entry of a sorted index.
type Member = store.Member

// ErrNoIndexes is returned when an operation is given an empty index list.
var ErrNoIndexes = errors.New("at least one index name is required")

// AddOptions carries optional parameters for Add.
type AddOptions struct {
	// Score orders the member within each index. When nil, the backend
	// assigns its documented default score.
	Score *float64
}

// RangeOptions carries optional parameters for rank-range queries.
type RangeOptions struct {
	// Reversed orders positions by descending score.
	Reversed bool
}

// ScoreRangeOptions carries optional parameters for score-range queries.
type ScoreRangeOptions struct {
	// Reversed orders results by descending score.
	Reversed bool

	// Offset skips that many matches before collecting results.
	Offset int64

	// Limit caps the number of results; <= 0 means no limit.
	Limit int64
}

// Backend is the full capability set of a sorted-index backend. All
// operations are scoped to an object identifier and one or more index
// names; index names are an explicit ordered slice, a singleton slice when
// only one index is targeted.
type Backend interface {
	// Add inserts member into every named index of obj, fanning the write
	// out when several names are given. Re-adding an existing member
	// updates its score, never duplicates. A partially failed fan-out is
	// reported as *ErrPartialWrite.
	Add(ctx context.Context, obj string, indexes []string, member string, opts *AddOptions) error

	// Remove deletes member from every named index of obj. Removing an
	// absent member is a no-op.
	Remove(ctx context.Context, obj string, indexes []string, member string) error

	// Get returns members of one index by rank position, start and stop
	// inclusive, with clamping range semantics. An empty or absent index
	// yields an empty slice.
	Get(ctx context.Context, obj, index string, start, stop int64, opts *RangeOptions) ([]Member, error)

	// GetByScore returns members of one index whose score lies in
	// [min, max], inclusive.
	GetByScore(ctx context.Context, obj, index string, min, max float64, opts *ScoreRangeOptions) ([]Member, error)

	// Count returns the cardinality of one index.
	Count(ctx context.Context, obj, index string) (int64, error)

	// RemoveIndex deletes one index of obj entirely. Removing an absent
	// index is a no-op.
	RemoveIndex(ctx context.Context, obj, index string) error

	// Indexes lists the names of all live indexes of obj, sorted.
	Indexes(ctx context.Context, obj string) ([]string, error)

	// Union returns the distinct members across the named indexes of obj,
	// ordered by score.
	Union(ctx context.Context, obj string, indexes []string) ([]Member, error)

	// Ping probes every connection behind the backend.
	Ping(ctx context.Context) error

	// Close releases all pooled connections.
	Close() error
}

// ErrPartialWrite reports a fan-out write that did not reach every named
// index. Succeeded and Failed enumerate the index names per outcome; Errs
// holds the underlying error per failed name.
type ErrPartialWrite struct {
	Op        string
	Object    string
	Succeeded []string
	Failed    []string
	Errs      map[string]error
}

func (e *ErrPartialWrite) Error() string {
	return fmt.Sprintf("partial %s on object %s: %d of %d indexes failed",
		e.Op, e.Object, len(e.Failed), len(e.Failed)+len(e.Succeeded))
}

// Unwrap exposes the underlying per-index errors to errors.Is / errors.As.
func (e *ErrPartialWrite) Unwrap() []error {
	errs := make([]error, 0, len(e.Errs))
	for _, err := range e.Errs {
		errs = append(errs, err)
	}
	return errs
}
