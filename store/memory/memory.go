// Package memory provides an in-process store.Conn implementation for
// testing and embedding. It mimics Redis sorted-set semantics: members are
// ordered by score, ties break lexicographically by value.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hupe1980/sandsnake/store"
)

var errClosed = errors.New("store is closed")

// Store is an in-memory sorted-set store. Thread-safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	zsets  map[string]map[string]float64
	sets   map[string]map[string]struct{}
	addr   string
	closed bool
}

var _ store.Conn = (*Store)(nil)

// New creates an in-memory store labeled with the given host descriptor.
// The label only shows up in errors and routing labels.
func New(addr string) *Store {
	return &Store{
		zsets: make(map[string]map[string]float64),
		sets:  make(map[string]map[string]struct{}),
		addr:  addr,
	}
}

// Addr returns the host descriptor label.
func (s *Store) Addr() string { return s.addr }

// Ping reports whether the store is still open.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return store.NewConnectionError(s.addr, errClosed)
	}
	return nil
}

// Close marks the store closed. Subsequent operations fail with a
// connection error.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.zsets = nil
	s.sets = nil
	return nil
}

func (s *Store) checkOpen() error {
	if s.closed {
		return store.NewConnectionError(s.addr, errClosed)
	}
	return nil
}

// ZAdd inserts or updates member in the sorted set at key.
func (s *Store) ZAdd(_ context.Context, key string, score float64, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.zadd(key, score, member)
	return nil
}

func (s *Store) zadd(key string, score float64, member string) {
	zs, ok := s.zsets[key]
	if !ok {
		zs = make(map[string]float64)
		s.zsets[key] = zs
	}
	zs[member] = score
}

// ZRem removes member from the sorted set at key.
func (s *Store) ZRem(_ context.Context, key string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.zrem(key, member)
	return nil
}

func (s *Store) zrem(key string, member string) {
	zs, ok := s.zsets[key]
	if !ok {
		return
	}
	delete(zs, member)
	if len(zs) == 0 {
		delete(s.zsets, key)
	}
}

// ordered returns the members of key sorted ascending by (score, value).
// Caller must hold at least the read lock.
func (s *Store) ordered(key string) []store.Member {
	zs := s.zsets[key]
	if len(zs) == 0 {
		return nil
	}
	members := make([]store.Member, 0, len(zs))
	for value, score := range zs {
		members = append(members, store.Member{Value: value, Score: score})
	}
	sort.Slice(members, func(i, j int) bool {
		if members[i].Score != members[j].Score {
			return members[i].Score < members[j].Score
		}
		return members[i].Value < members[j].Value
	})
	return members
}

// ZRange returns members by rank position, start and stop inclusive, with
// Redis index semantics: negative positions count from the end and
// out-of-range positions clamp.
func (s *Store) ZRange(_ context.Context, key string, start, stop int64, reverse bool) ([]store.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	members := s.ordered(key)
	if reverse {
		reverseMembers(members)
	}

	n := int64(len(members))
	if start < 0 {
		start = n + start
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop = n + stop
	}
	if stop >= n {
		stop = n - 1
	}
	if start >= n || start > stop || stop < 0 {
		return []store.Member{}, nil
	}
	return members[start : stop+1], nil
}

// ZRangeByScore returns members with score in [min, max].
func (s *Store) ZRangeByScore(_ context.Context, key string, min, max float64, reverse bool, offset, limit int64) ([]store.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}

	members := s.ordered(key)
	filtered := members[:0:0]
	for _, m := range members {
		if m.Score >= min && m.Score <= max {
			filtered = append(filtered, m)
		}
	}
	if reverse {
		reverseMembers(filtered)
	}

	if offset > 0 {
		if offset >= int64(len(filtered)) {
			return []store.Member{}, nil
		}
		filtered = filtered[offset:]
	}
	if limit > 0 && limit < int64(len(filtered)) {
		filtered = filtered[:limit]
	}
	if filtered == nil {
		filtered = []store.Member{}
	}
	return filtered, nil
}

// ZCard returns the cardinality of the sorted set at key.
func (s *Store) ZCard(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return int64(len(s.zsets[key])), nil
}

// SAdd adds member to the plain set at key.
func (s *Store) SAdd(_ context.Context, key string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.sadd(key, member)
	return nil
}

func (s *Store) sadd(key string, member string) {
	set, ok := s.sets[key]
	if !ok {
		set = make(map[string]struct{})
		s.sets[key] = set
	}
	set[member] = struct{}{}
}

// SRem removes member from the plain set at key.
func (s *Store) SRem(_ context.Context, key string, member string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	s.srem(key, member)
	return nil
}

func (s *Store) srem(key string, member string) {
	set, ok := s.sets[key]
	if !ok {
		return
	}
	delete(set, member)
	if len(set) == 0 {
		delete(s.sets, key)
	}
}

// SMembers returns all members of the plain set at key, in no particular
// order.
func (s *Store) SMembers(_ context.Context, key string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	set := s.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	return members, nil
}

// SCard returns the cardinality of the plain set at key.
func (s *Store) SCard(_ context.Context, key string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.checkOpen(); err != nil {
		return 0, err
	}
	return int64(len(s.sets[key])), nil
}

// Del deletes the given keys from both namespaces.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	for _, key := range keys {
		delete(s.zsets, key)
		delete(s.sets, key)
	}
	return nil
}

// Pipelined queues operations and applies the whole batch under one lock,
// so concurrent readers observe either none or all of the batch.
func (s *Store) Pipelined(ctx context.Context, fn func(store.Pipe)) error {
	p := &pipe{}
	fn(p)

	if err := ctx.Err(); err != nil {
		return store.NewConnectionError(s.addr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return err
	}
	for _, op := range p.ops {
		op(s)
	}
	return nil
}

type pipe struct {
	ops []func(*Store)
}

func (p *pipe) ZAdd(key string, score float64, member string) {
	p.ops = append(p.ops, func(s *Store) { s.zadd(key, score, member) })
}

func (p *pipe) ZRem(key string, member string) {
	p.ops = append(p.ops, func(s *Store) { s.zrem(key, member) })
}

func (p *pipe) SAdd(key string, member string) {
	p.ops = append(p.ops, func(s *Store) { s.sadd(key, member) })
}

func (p *pipe) SRem(key string, member string) {
	p.ops = append(p.ops, func(s *Store) { s.srem(key, member) })
}

func (p *pipe) Del(key string) {
	p.ops = append(p.ops, func(s *Store) {
		delete(s.zsets, key)
		delete(s.sets, key)
	})
}

func reverseMembers(members []store.Member) {
	for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
		members[i], members[j] = members[j], members[i]
	}
}
