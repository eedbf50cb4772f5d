// Package store defines the thin storage-client contract sandsnake uses to
// talk to a sorted-set capable engine.
//
// Conn is the interface for a single pooled connection to one backend host.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - memory.Store: in-process sorted-set store, no server required
//   - redis.Conn: one go-redis client per configured host
//
// # Custom Implementations
//
// Any engine that supports add-with-score, remove-by-value, range-by-rank,
// range-by-score and cardinality over a keyed namespace can implement Conn.
package store

import "context"

// Member is a single entry of a sorted index: an opaque value plus the score
// that orders it.
type Member struct {
	Value string
	Score float64
}

// Conn is a live connection to one backend host. All operations are
// synchronous; cancellation and timeouts are carried by the context.
type Conn interface {
	// ZAdd inserts member into the sorted set at key, or updates its score
	// if it is already present.
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZRem removes member from the sorted set at key. Removing an absent
	// member is a no-op, not an error.
	ZRem(ctx context.Context, key string, member string) error

	// ZRange returns members of the sorted set at key by rank position,
	// start and stop inclusive. Negative positions count from the end,
	// out-of-range positions clamp to the available bounds. When reverse is
	// true positions index the descending order.
	ZRange(ctx context.Context, key string, start, stop int64, reverse bool) ([]Member, error)

	// ZRangeByScore returns members whose score lies in [min, max],
	// inclusive. Infinite bounds are expressed with math.Inf. offset skips
	// that many matches and limit caps the result; limit <= 0 means no
	// limit. When reverse is true results are ordered by descending score.
	ZRangeByScore(ctx context.Context, key string, min, max float64, reverse bool, offset, limit int64) ([]Member, error)

	// ZCard returns the cardinality of the sorted set at key.
	ZCard(ctx context.Context, key string) (int64, error)

	// SAdd adds member to the plain set at key.
	SAdd(ctx context.Context, key string, member string) error

	// SRem removes member from the plain set at key. No-op when absent.
	SRem(ctx context.Context, key string, member string) error

	// SMembers returns all members of the plain set at key.
	SMembers(ctx context.Context, key string) ([]string, error)

	// SCard returns the cardinality of the plain set at key.
	SCard(ctx context.Context, key string) (int64, error)

	// Del deletes the given keys. Deleting absent keys is a no-op.
	Del(ctx context.Context, keys ...string) error

	// Pipelined queues the operations issued through fn and submits them as
	// one batch. Submission is all-or-nothing at the network layer; commit
	// atomicity is whatever the engine guarantees per key.
	Pipelined(ctx context.Context, fn func(Pipe)) error

	// Ping probes the connection.
	Ping(ctx context.Context) error

	// Addr returns the host descriptor this connection is bound to.
	Addr() string

	// Close tears down the connection.
	Close() error
}

// Pipe queues operations inside Conn.Pipelined. Calls never perform I/O
// directly; the batch runs when Pipelined returns control to the Conn.
type Pipe interface {
	ZAdd(key string, score float64, member string)
	ZRem(key string, member string)
	SAdd(key string, member string)
	SRem(key string, member string)
	Del(key string)
}
