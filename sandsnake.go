// Package sandsnake maintains per-object, per-index ordered collections of
// members over a distributed sorted-set backend, without callers having to
// manage shard routing, connection pooling or sorted-set semantics.
//
// An index is an ordered collection of opaque members scoped to an object
// identifier and an index name (e.g. items in "user:1"'s "homefeed"). Each
// (object, index) pair maps deterministically to a physical key, and each
// physical key to one backend host, for the lifetime of a configuration.
//
// # Quick Start
//
//	ss, err := sandsnake.New(sandsnake.Config{
//	    Backend: "redis",
//	    Settings: sandsnake.Settings{
//	        Defaults: sandsnake.Host{Addr: "localhost:6379"},
//	        Hosts:    []sandsnake.Host{{DB: 0}, {DB: 1}},
//	    },
//	})
//	if err != nil {
//	    panic(err)
//	}
//	defer ss.Close()
//
//	ctx := context.Background()
//	err = ss.Add(ctx, "user:1", []string{"homefeed", "recogfeed"}, "abc")
//	members, err := ss.Get(ctx, "user:1", "homefeed", 0, -1)
//
// Members added without an explicit score are ordered by insertion time:
// the default score is a strictly increasing microsecond timestamp.
//
// # Backends
//
//   - "redis": one pooled go-redis client per configured host
//   - "memory": in-process store, one per host entry, for tests and
//     embedding
//
// Custom backends can be added with RegisterBackend.
//
// # Concurrency
//
// All operations are synchronous and safe for concurrent use by multiple
// goroutines sharing one instance. The library performs no automatic
// retries; callers needing resilience wrap calls with their own policy.
package sandsnake

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/sandsnake/backend"
	"github.com/hupe1980/sandsnake/codec"
)

// Member is a single entry of a sorted index: an opaque value plus the
// score that orders it.
type Member = backend.Member

// AddOptions contains options for Add.
type AddOptions struct {
	// Score orders the member within each index. When nil the backend
	// assigns a monotonically increasing timestamp score, so members keep
	// insertion order.
	Score *float64
}

// Score is a convenience for setting AddOptions.Score inline.
func Score(v float64) *float64 { return &v }

// RangeOptions contains options for Get.
type RangeOptions = backend.RangeOptions

// ScoreRangeOptions contains options for GetByScore.
type ScoreRangeOptions = backend.ScoreRangeOptions

// Sandsnake is a sorted-index store over a cluster of sorted-set backends.
type Sandsnake struct {
	backend backend.Backend
	codec   codec.Codec
	metrics MetricsCollector
	logger  *Logger
	closed  atomic.Bool
}

// New creates a backend from the given configuration. This is the single
// entry point: it validates the configuration, resolves the named backend
// constructor from the registry and wires one connection per configured
// host. All configuration errors surface here, before any connection is
// made.
func New(cfg Config, optFns ...Option) (*Sandsnake, error) {
	opts := applyOptions(optFns)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	factory, ok := backendFactory(cfg.Backend)
	if !ok {
		return nil, configError(fmt.Sprintf("unknown backend %q", cfg.Backend), nil)
	}

	b, err := factory(cfg)
	if err != nil {
		return nil, err
	}

	return &Sandsnake{
		backend: b,
		codec:   opts.codec,
		metrics: opts.metrics,
		logger:  opts.logger,
	}, nil
}

// Add inserts member into every named index of obj, fanning the write out
// when several names are given. Re-adding an existing member updates its
// score instead of duplicating it. A partially failed fan-out is reported
// as *backend.ErrPartialWrite, enumerating which index names succeeded.
func (s *Sandsnake) Add(ctx context.Context, obj string, indexes []string, member string, optFns ...func(o *AddOptions)) error {
	start := time.Now()
	if s.closed.Load() {
		return ErrClosed
	}

	opts := AddOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	encoded, err := s.encode(member)
	if err == nil {
		err = s.backend.Add(ctx, obj, indexes, encoded, &backend.AddOptions{Score: opts.Score})
	}
	s.metrics.RecordAdd(time.Since(start), err)
	s.logger.LogAdd(ctx, obj, indexes, err)
	return err
}

// Remove deletes member from every named index of obj. Removing an absent
// member, or from an absent index, is a no-op.
func (s *Sandsnake) Remove(ctx context.Context, obj string, indexes []string, member string) error {
	start := time.Now()
	if s.closed.Load() {
		return ErrClosed
	}

	encoded, err := s.encode(member)
	if err == nil {
		err = s.backend.Remove(ctx, obj, indexes, encoded)
	}
	s.metrics.RecordRemove(time.Since(start), err)
	s.logger.LogRemove(ctx, obj, indexes, err)
	return err
}

// Get returns members of one index by rank position, start and stop
// inclusive. Negative positions count from the end and out-of-range
// positions clamp to the available bounds; an empty index yields an empty
// slice, never an error.
func (s *Sandsnake) Get(ctx context.Context, obj, index string, start, stop int64, optFns ...func(o *RangeOptions)) ([]Member, error) {
	began := time.Now()
	if s.closed.Load() {
		return nil, ErrClosed
	}

	opts := RangeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	members, err := s.backend.Get(ctx, obj, index, start, stop, &opts)
	if err == nil {
		members, err = s.decodeAll(members)
	}
	s.metrics.RecordRange(len(members), time.Since(began), err)
	s.logger.LogRange(ctx, obj, index, len(members), err)
	return members, err
}

// GetByScore returns members of one index whose score lies in [min, max],
// inclusive. Use math.Inf for open bounds.
func (s *Sandsnake) GetByScore(ctx context.Context, obj, index string, min, max float64, optFns ...func(o *ScoreRangeOptions)) ([]Member, error) {
	began := time.Now()
	if s.closed.Load() {
		return nil, ErrClosed
	}

	opts := ScoreRangeOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	members, err := s.backend.GetByScore(ctx, obj, index, min, max, &opts)
	if err == nil {
		members, err = s.decodeAll(members)
	}
	s.metrics.RecordRange(len(members), time.Since(began), err)
	s.logger.LogRange(ctx, obj, index, len(members), err)
	return members, err
}

// Count returns the cardinality of one index.
func (s *Sandsnake) Count(ctx context.Context, obj, index string) (int64, error) {
	start := time.Now()
	if s.closed.Load() {
		return 0, ErrClosed
	}

	n, err := s.backend.Count(ctx, obj, index)
	s.metrics.RecordCount(time.Since(start), err)
	s.logger.LogCount(ctx, obj, index, n, err)
	return n, err
}

// RemoveIndex deletes one index of obj entirely. Removing an absent index
// is a no-op.
func (s *Sandsnake) RemoveIndex(ctx context.Context, obj, index string) error {
	start := time.Now()
	if s.closed.Load() {
		return ErrClosed
	}

	err := s.backend.RemoveIndex(ctx, obj, index)
	s.metrics.RecordRemoveIndex(time.Since(start), err)
	s.logger.LogRemoveIndex(ctx, obj, index, err)
	return err
}

// Indexes lists the names of all live indexes of obj, sorted.
func (s *Sandsnake) Indexes(ctx context.Context, obj string) ([]string, error) {
	start := time.Now()
	if s.closed.Load() {
		return nil, ErrClosed
	}

	names, err := s.backend.Indexes(ctx, obj)
	s.metrics.RecordIndexes(time.Since(start), err)
	s.logger.LogIndexes(ctx, obj, len(names), err)
	return names, err
}

// Union returns the distinct members across the named indexes of obj,
// ordered ascending by score. A member present in several indexes keeps
// its highest score.
func (s *Sandsnake) Union(ctx context.Context, obj string, indexes []string) ([]Member, error) {
	began := time.Now()
	if s.closed.Load() {
		return nil, ErrClosed
	}

	members, err := s.backend.Union(ctx, obj, indexes)
	if err == nil {
		members, err = s.decodeAll(members)
	}
	s.metrics.RecordRange(len(members), time.Since(began), err)
	s.logger.LogUnion(ctx, obj, indexes, len(members), err)
	return members, err
}

// Ping probes every pooled connection.
func (s *Sandsnake) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	return s.backend.Ping(ctx)
}

// Close releases all pooled connections. Operations issued after Close
// return ErrClosed.
func (s *Sandsnake) Close() error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.backend.Close()
}

func (s *Sandsnake) encode(member string) (string, error) {
	encoded, err := s.codec.Encode([]byte(member))
	if err != nil {
		return "", fmt.Errorf("sandsnake: encode member (%s): %w", s.codec.Name(), err)
	}
	return string(encoded), nil
}

func (s *Sandsnake) decodeAll(members []Member) ([]Member, error) {
	if _, ok := s.codec.(codec.Raw); ok {
		return members, nil
	}
	for i, m := range members {
		decoded, err := s.codec.Decode([]byte(m.Value))
		if err != nil {
			return nil, fmt.Errorf("sandsnake: decode member (%s): %w", s.codec.Name(), err)
		}
		members[i].Value = string(decoded)
	}
	return members, nil
}
