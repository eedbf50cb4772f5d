// Package engine implements the sorted-index core: it derives physical keys
// for (object, index) pairs, routes them through a cluster, and fans writes
// out across index names with per-connection pipelines.
package engine

import (
	"context"
	"errors"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sandsnake/backend"
	"github.com/hupe1980/sandsnake/cluster"
	"github.com/hupe1980/sandsnake/store"
)

// Engine implements backend.Backend over a cluster of storage connections.
// Safe for concurrent use by multiple callers sharing one instance; the
// engine holds no cross-key locks.
type Engine struct {
	cluster *cluster.Cluster
	prefix  string
	score   func() float64
}

var _ backend.Backend = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithPrefix overrides the physical key namespace prefix.
func WithPrefix(prefix string) Option {
	return func(e *Engine) {
		if prefix != "" {
			e.prefix = prefix
		}
	}
}

// WithScoreFunc overrides the default score source. The function must be
// safe for concurrent use and should be monotonic if insertion order
// matters to the caller.
func WithScoreFunc(fn func() float64) Option {
	return func(e *Engine) {
		if fn != nil {
			e.score = fn
		}
	}
}

// New creates an engine over the given cluster.
func New(c *cluster.Cluster, optFns ...Option) *Engine {
	e := &Engine{
		cluster: c,
		prefix:  DefaultPrefix,
		score:   (&monotonicClock{}).Next,
	}
	for _, fn := range optFns {
		fn(e)
	}
	return e
}

// connGroup collects the index names of one fan-out whose physical keys
// route to the same connection, so they can share a pipeline.
type connGroup struct {
	conn  store.Conn
	names []string
	keys  []string
}

// groupByConn routes every (obj, index) key and buckets them per
// connection. Routing failures abort the whole call.
func (e *Engine) groupByConn(obj string, indexes []string) (map[int]*connGroup, error) {
	groups := make(map[int]*connGroup)
	for _, name := range indexes {
		key := e.indexKey(obj, name)
		pos, err := e.cluster.RouteIndex(key)
		if err != nil {
			return nil, err
		}
		g, ok := groups[pos]
		if !ok {
			g = &connGroup{conn: e.cluster.Conn(pos)}
			groups[pos] = g
		}
		g.names = append(g.names, name)
		g.keys = append(g.keys, key)
	}
	return groups, nil
}

// sortedPositions returns the group keys in host-list order so fan-out
// execution and error reporting are deterministic.
func sortedPositions(groups map[int]*connGroup) []int {
	positions := make([]int, 0, len(groups))
	for pos := range groups {
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions
}

// fanOut runs op as one pipeline per connection group and aggregates the
// outcome. When every index name fails with one underlying error it is
// returned as-is; a mixed outcome becomes *backend.ErrPartialWrite.
func (e *Engine) fanOut(ctx context.Context, opName, obj string, indexes []string, groups map[int]*connGroup, op func(p store.Pipe, g *connGroup)) ([]string, error) {
	var (
		succeeded []string
		failed    []string
		errsByIdx map[string]error
		groupErrs []error
	)

	for _, pos := range sortedPositions(groups) {
		g := groups[pos]
		err := g.conn.Pipelined(ctx, func(p store.Pipe) {
			op(p, g)
		})
		if err != nil {
			if errsByIdx == nil {
				errsByIdx = make(map[string]error)
			}
			for _, name := range g.names {
				failed = append(failed, name)
				errsByIdx[name] = err
			}
			groupErrs = append(groupErrs, err)
			continue
		}
		succeeded = append(succeeded, g.names...)
	}

	if len(failed) == 0 {
		return succeeded, nil
	}
	if len(failed) == len(indexes) && len(groupErrs) == 1 {
		// Nothing was written and there is a single cause; no point in an
		// aggregate.
		return nil, groupErrs[0]
	}
	return succeeded, &backend.ErrPartialWrite{
		Op:        opName,
		Object:    obj,
		Succeeded: succeeded,
		Failed:    failed,
		Errs:      errsByIdx,
	}
}

// Add inserts member into every named index of obj. Without an explicit
// score the engine assigns its monotonic default, so re-adding a member
// reorders it instead of duplicating it.
func (e *Engine) Add(ctx context.Context, obj string, indexes []string, member string, opts *backend.AddOptions) error {
	if len(indexes) == 0 {
		return backend.ErrNoIndexes
	}

	var score float64
	if opts != nil && opts.Score != nil {
		score = *opts.Score
	} else {
		score = e.score()
	}

	groups, err := e.groupByConn(obj, indexes)
	if err != nil {
		return err
	}

	succeeded, fanErr := e.fanOut(ctx, "add", obj, indexes, groups, func(p store.Pipe, g *connGroup) {
		for _, key := range g.keys {
			p.ZAdd(key, score, member)
		}
	})

	// Track live index names per object, but only the ones whose write
	// actually landed.
	var collErr error
	if len(succeeded) > 0 {
		collErr = e.addToCollection(ctx, obj, succeeded)
	}

	switch {
	case fanErr != nil && collErr != nil:
		return errors.Join(fanErr, collErr)
	case fanErr != nil:
		return fanErr
	default:
		return collErr
	}
}

func (e *Engine) addToCollection(ctx context.Context, obj string, names []string) error {
	key := e.collectionKey(obj)
	conn, err := e.cluster.Route(key)
	if err != nil {
		return err
	}
	return conn.Pipelined(ctx, func(p store.Pipe) {
		for _, name := range names {
			p.SAdd(key, name)
		}
	})
}

// Remove deletes member from every named index of obj. Absent members and
// absent indexes are silent no-ops.
func (e *Engine) Remove(ctx context.Context, obj string, indexes []string, member string) error {
	if len(indexes) == 0 {
		return backend.ErrNoIndexes
	}

	groups, err := e.groupByConn(obj, indexes)
	if err != nil {
		return err
	}

	_, fanErr := e.fanOut(ctx, "remove", obj, indexes, groups, func(p store.Pipe, g *connGroup) {
		for _, key := range g.keys {
			p.ZRem(key, member)
		}
	})
	return fanErr
}

// Get returns members of one index by rank position.
func (e *Engine) Get(ctx context.Context, obj, index string, start, stop int64, opts *backend.RangeOptions) ([]backend.Member, error) {
	if opts == nil {
		opts = &backend.RangeOptions{}
	}
	key := e.indexKey(obj, index)
	conn, err := e.cluster.Route(key)
	if err != nil {
		return nil, err
	}
	return conn.ZRange(ctx, key, start, stop, opts.Reversed)
}

// GetByScore returns members of one index with score in [min, max].
func (e *Engine) GetByScore(ctx context.Context, obj, index string, min, max float64, opts *backend.ScoreRangeOptions) ([]backend.Member, error) {
	if opts == nil {
		opts = &backend.ScoreRangeOptions{}
	}
	key := e.indexKey(obj, index)
	conn, err := e.cluster.Route(key)
	if err != nil {
		return nil, err
	}
	return conn.ZRangeByScore(ctx, key, min, max, opts.Reversed, opts.Offset, opts.Limit)
}

// Count returns the cardinality of one index.
func (e *Engine) Count(ctx context.Context, obj, index string) (int64, error) {
	key := e.indexKey(obj, index)
	conn, err := e.cluster.Route(key)
	if err != nil {
		return 0, err
	}
	return conn.ZCard(ctx, key)
}

// RemoveIndex deletes one index of obj entirely and drops its name from
// the object's collection set. The collection set itself is deleted once
// it becomes empty so the object leaves no residue behind.
func (e *Engine) RemoveIndex(ctx context.Context, obj, index string) error {
	key := e.indexKey(obj, index)
	conn, err := e.cluster.Route(key)
	if err != nil {
		return err
	}
	if err := conn.Del(ctx, key); err != nil {
		return err
	}

	ckey := e.collectionKey(obj)
	cconn, err := e.cluster.Route(ckey)
	if err != nil {
		return err
	}
	if err := cconn.SRem(ctx, ckey, index); err != nil {
		return err
	}
	n, err := cconn.SCard(ctx, ckey)
	if err != nil {
		return err
	}
	if n == 0 {
		return cconn.Del(ctx, ckey)
	}
	return nil
}

// Indexes lists the live index names of obj, sorted.
func (e *Engine) Indexes(ctx context.Context, obj string) ([]string, error) {
	key := e.collectionKey(obj)
	conn, err := e.cluster.Route(key)
	if err != nil {
		return nil, err
	}
	names, err := conn.SMembers(ctx, key)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Union returns the distinct members across the named indexes of obj. Reads
// fan out concurrently; a duplicate member keeps its highest score. Results
// are ordered ascending by score, ties by value.
func (e *Engine) Union(ctx context.Context, obj string, indexes []string) ([]backend.Member, error) {
	if len(indexes) == 0 {
		return nil, backend.ErrNoIndexes
	}

	results := make([][]backend.Member, len(indexes))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range indexes {
		key := e.indexKey(obj, name)
		conn, err := e.cluster.Route(key)
		if err != nil {
			return nil, err
		}
		i := i
		g.Go(func() error {
			members, err := conn.ZRange(gctx, key, 0, -1, false)
			if err != nil {
				return err
			}
			results[i] = members
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := make(map[string]float64)
	for _, members := range results {
		for _, m := range members {
			if score, ok := merged[m.Value]; !ok || m.Score > score {
				merged[m.Value] = m.Score
			}
		}
	}

	union := make([]backend.Member, 0, len(merged))
	for value, score := range merged {
		union = append(union, backend.Member{Value: value, Score: score})
	}
	sort.Slice(union, func(i, j int) bool {
		if union[i].Score != union[j].Score {
			return union[i].Score < union[j].Score
		}
		return union[i].Value < union[j].Value
	})
	return union, nil
}

// Ping probes every connection behind the engine.
func (e *Engine) Ping(ctx context.Context) error {
	return e.cluster.Ping(ctx)
}

// Close releases the cluster's pooled connections.
func (e *Engine) Close() error {
	return e.cluster.Close()
}
