// Package redis implements store.Conn on top of go-redis. Each Conn wraps
// one pooled client bound to a single host descriptor; connection pooling,
// timeouts and the wire protocol are go-redis concerns.
package redis

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/hupe1980/sandsnake/store"
)

// Options are the per-host connection parameters. Zero values fall back to
// go-redis defaults.
type Options struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// DB selects the logical database.
	DB int

	// Password authenticates the connection, if set.
	Password string

	// DialTimeout, ReadTimeout and WriteTimeout bound each network step.
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// PoolSize caps the number of socket connections held by the client.
	PoolSize int

	// MaxRPS enables client-side rate limiting when > 0. Commands wait for
	// a token before being issued; waiting respects the context.
	MaxRPS int
}

// Conn is a store.Conn backed by a go-redis client.
type Conn struct {
	client  *redis.Client
	limiter *rate.Limiter
	addr    string
}

var _ store.Conn = (*Conn)(nil)

// New creates a connection to one Redis host. The underlying client dials
// lazily; use Ping to verify reachability.
func New(opts Options) *Conn {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolSize:     opts.PoolSize,
	})

	var limiter *rate.Limiter
	if opts.MaxRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.MaxRPS), opts.MaxRPS)
	}

	return &Conn{
		client:  client,
		limiter: limiter,
		addr:    opts.Addr,
	}
}

// Addr returns the host descriptor this connection is bound to.
func (c *Conn) Addr() string { return c.addr }

// Ping probes the server.
func (c *Conn) Ping(ctx context.Context) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.translate(c.client.Ping(ctx).Err())
}

// Close releases the underlying client and its pool.
func (c *Conn) Close() error {
	return c.client.Close()
}

func (c *Conn) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return store.NewConnectionError(c.addr, err)
	}
	return nil
}

// translate maps go-redis errors onto the store taxonomy: server replies
// (e.g. WRONGTYPE) become *store.ErrBackend, everything else that is not a
// missing-key reply becomes *store.ErrConnection.
func (c *Conn) translate(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return store.NewBackendError(c.addr, err)
	}
	return store.NewConnectionError(c.addr, err)
}

// ZAdd inserts or updates member in the sorted set at key.
func (c *Conn) ZAdd(ctx context.Context, key string, score float64, member string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.translate(c.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err())
}

// ZRem removes member from the sorted set at key.
func (c *Conn) ZRem(ctx context.Context, key string, member string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.translate(c.client.ZRem(ctx, key, member).Err())
}

// ZRange returns members by rank position.
func (c *Conn) ZRange(ctx context.Context, key string, start, stop int64, reverse bool) ([]store.Member, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	var cmd *redis.ZSliceCmd
	if reverse {
		cmd = c.client.ZRevRangeWithScores(ctx, key, start, stop)
	} else {
		cmd = c.client.ZRangeWithScores(ctx, key, start, stop)
	}

	zs, err := cmd.Result()
	if err != nil {
		return nil, c.translate(err)
	}
	return c.toMembers(zs)
}

// ZRangeByScore returns members with score in [min, max].
func (c *Conn) ZRangeByScore(ctx context.Context, key string, min, max float64, reverse bool, offset, limit int64) ([]store.Member, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	by := &redis.ZRangeBy{
		Min:    formatScore(min),
		Max:    formatScore(max),
		Offset: offset,
	}
	switch {
	case limit > 0:
		by.Count = limit
	case offset > 0:
		// Redis LIMIT needs an explicit count; -1 means unbounded.
		by.Count = -1
	}

	var cmd *redis.ZSliceCmd
	if reverse {
		cmd = c.client.ZRevRangeByScoreWithScores(ctx, key, by)
	} else {
		cmd = c.client.ZRangeByScoreWithScores(ctx, key, by)
	}

	zs, err := cmd.Result()
	if err != nil {
		return nil, c.translate(err)
	}
	return c.toMembers(zs)
}

// ZCard returns the cardinality of the sorted set at key.
func (c *Conn) ZCard(ctx context.Context, key string) (int64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	n, err := c.client.ZCard(ctx, key).Result()
	return n, c.translate(err)
}

// SAdd adds member to the plain set at key.
func (c *Conn) SAdd(ctx context.Context, key string, member string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.translate(c.client.SAdd(ctx, key, member).Err())
}

// SRem removes member from the plain set at key.
func (c *Conn) SRem(ctx context.Context, key string, member string) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.translate(c.client.SRem(ctx, key, member).Err())
}

// SMembers returns all members of the plain set at key.
func (c *Conn) SMembers(ctx context.Context, key string) ([]string, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	members, err := c.client.SMembers(ctx, key).Result()
	return members, c.translate(err)
}

// SCard returns the cardinality of the plain set at key.
func (c *Conn) SCard(ctx context.Context, key string) (int64, error) {
	if err := c.wait(ctx); err != nil {
		return 0, err
	}
	n, err := c.client.SCard(ctx, key).Result()
	return n, c.translate(err)
}

// Del deletes the given keys.
func (c *Conn) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.translate(c.client.Del(ctx, keys...).Err())
}

// Pipelined submits the queued operations as one go-redis pipeline.
func (c *Conn) Pipelined(ctx context.Context, fn func(store.Pipe)) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		fn(&pipe{p: p, ctx: ctx})
		return nil
	})
	return c.translate(err)
}

type pipe struct {
	p   redis.Pipeliner
	ctx context.Context
}

func (p *pipe) ZAdd(key string, score float64, member string) {
	p.p.ZAdd(p.ctx, key, redis.Z{Score: score, Member: member})
}

func (p *pipe) ZRem(key string, member string) {
	p.p.ZRem(p.ctx, key, member)
}

func (p *pipe) SAdd(key string, member string) {
	p.p.SAdd(p.ctx, key, member)
}

func (p *pipe) SRem(key string, member string) {
	p.p.SRem(p.ctx, key, member)
}

func (p *pipe) Del(key string) {
	p.p.Del(p.ctx, key)
}

func (c *Conn) toMembers(zs []redis.Z) ([]store.Member, error) {
	members := make([]store.Member, 0, len(zs))
	for _, z := range zs {
		value, ok := z.Member.(string)
		if !ok {
			return nil, store.NewBackendError(c.addr, errUnexpectedMember)
		}
		members = append(members, store.Member{Value: value, Score: z.Score})
	}
	return members, nil
}

var errUnexpectedMember = errors.New("unexpected member type in reply")

func formatScore(v float64) string {
	switch {
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsInf(v, 1):
		return "+inf"
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}
