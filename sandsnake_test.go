package sandsnake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sandsnake/codec"
)

func memoryConfig() Config {
	return Config{
		Backend: "memory",
		Settings: Settings{
			Hosts: []Host{
				{Addr: "mem-a"},
				{Addr: "mem-b"},
			},
		},
	}
}

func newTestSandsnake(t *testing.T, optFns ...Option) *Sandsnake {
	t.Helper()

	s, err := New(memoryConfig(), optFns...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func values(members []Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Value
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("UnknownBackend", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Backend = "cassandra"

		_, err := New(cfg)

		var cerr *ErrConfig
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("NoHosts", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Settings.Hosts = nil

		_, err := New(cfg)

		var cerr *ErrConfig
		require.ErrorAs(t, err, &cerr)
	})

	t.Run("ModuloRouter", func(t *testing.T) {
		cfg := memoryConfig()
		cfg.Settings.Router = RouterModulo

		s, err := New(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		require.NoError(t, s.Add(context.Background(), "user:1", []string{"homefeed"}, "act:1"))
	})
}

func TestAddRemoveLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t)

	require.NoError(t, s.Add(ctx, "user:1", []string{"homefeed"}, "act:1"))

	n, err := s.Count(ctx, "user:1", "homefeed")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.Remove(ctx, "user:1", []string{"homefeed"}, "act:1"))

	n, err = s.Count(ctx, "user:1", "homefeed")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFanOut(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t)

	require.NoError(t, s.Add(ctx, "user:1", []string{"homefeed", "recogfeed"}, "act:1"))

	for _, index := range []string{"homefeed", "recogfeed"} {
		members, err := s.Get(ctx, "user:1", index, 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"act:1"}, values(members), index)
	}

	names, err := s.Indexes(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"homefeed", "recogfeed"}, names)
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t)

	for i, member := range []string{"act:1", "act:2", "act:3"} {
		v := float64(i + 1)
		require.NoError(t, s.Add(ctx, "user:1", []string{"homefeed"}, member, func(o *AddOptions) {
			o.Score = Score(v)
		}))
	}

	t.Run("Ascending", func(t *testing.T) {
		members, err := s.Get(ctx, "user:1", "homefeed", 0, -1)
		require.NoError(t, err)
		assert.Equal(t, []string{"act:1", "act:2", "act:3"}, values(members))
	})

	t.Run("Reversed", func(t *testing.T) {
		members, err := s.Get(ctx, "user:1", "homefeed", 0, -1, func(o *RangeOptions) {
			o.Reversed = true
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"act:3", "act:2", "act:1"}, values(members))
	})

	t.Run("EmptyIndex", func(t *testing.T) {
		members, err := s.Get(ctx, "user:1", "nosuch", 0, -1)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}

func TestGetByScore(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t)

	for i, member := range []string{"act:1", "act:2", "act:3", "act:4"} {
		v := float64(i + 1)
		require.NoError(t, s.Add(ctx, "user:1", []string{"homefeed"}, member, func(o *AddOptions) {
			o.Score = Score(v)
		}))
	}

	members, err := s.GetByScore(ctx, "user:1", "homefeed", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"act:2", "act:3"}, values(members))

	members, err = s.GetByScore(ctx, "user:1", "homefeed", 1, 4, func(o *ScoreRangeOptions) {
		o.Offset = 1
		o.Limit = 2
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"act:2", "act:3"}, values(members))
}

func TestRemoveIndex(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t)

	require.NoError(t, s.Add(ctx, "user:1", []string{"homefeed", "recogfeed"}, "act:1"))
	require.NoError(t, s.RemoveIndex(ctx, "user:1", "homefeed"))

	names, err := s.Indexes(ctx, "user:1")
	require.NoError(t, err)
	assert.Equal(t, []string{"recogfeed"}, names)
}

func TestUnion(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t)

	add := func(member string, v float64, indexes ...string) {
		require.NoError(t, s.Add(ctx, "user:1", indexes, member, func(o *AddOptions) {
			o.Score = Score(v)
		}))
	}
	add("act:1", 1, "homefeed")
	add("act:2", 2, "homefeed", "recogfeed")
	add("act:3", 3, "recogfeed")

	members, err := s.Union(ctx, "user:1", []string{"homefeed", "recogfeed"})
	require.NoError(t, err)
	assert.Equal(t, []string{"act:1", "act:2", "act:3"}, values(members))
}

func TestCodecRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t, WithCodec(codec.S2{}))

	payload := `{"activity": "act:1", "verb": "follow", "actor": "user:9"}`
	require.NoError(t, s.Add(ctx, "user:1", []string{"homefeed"}, payload))

	members, err := s.Get(ctx, "user:1", "homefeed", 0, -1)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, payload, members[0].Value)

	// The encoded form is the stored identity, so removal goes through the
	// same codec.
	require.NoError(t, s.Remove(ctx, "user:1", []string{"homefeed"}, payload))

	n, err := s.Count(ctx, "user:1", "homefeed")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	mc := &BasicMetricsCollector{}
	s := newTestSandsnake(t, WithMetricsCollector(mc))

	require.NoError(t, s.Add(ctx, "user:1", []string{"homefeed"}, "act:1"))
	_, err := s.Get(ctx, "user:1", "homefeed", 0, -1)
	require.NoError(t, err)
	_, err = s.Indexes(ctx, "user:1")
	require.NoError(t, err)

	stats := mc.Stats()
	assert.Equal(t, int64(1), stats.AddCount)
	assert.Zero(t, stats.AddErrors)
	assert.Equal(t, int64(1), stats.RangeCount)
	assert.Equal(t, int64(1), mc.IndexesCount.Load())
	assert.Zero(t, mc.IndexesErrors.Load())
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	s := newTestSandsnake(t)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close()) // idempotent

	require.ErrorIs(t, s.Add(ctx, "user:1", []string{"homefeed"}, "act:1"), ErrClosed)
	require.ErrorIs(t, s.Remove(ctx, "user:1", []string{"homefeed"}, "act:1"), ErrClosed)

	_, err := s.Get(ctx, "user:1", "homefeed", 0, -1)
	require.ErrorIs(t, err, ErrClosed)

	_, err = s.Count(ctx, "user:1", "homefeed")
	require.ErrorIs(t, err, ErrClosed)

	require.ErrorIs(t, s.Ping(ctx), ErrClosed)
}

func TestPing(t *testing.T) {
	s := newTestSandsnake(t)
	require.NoError(t, s.Ping(context.Background()))
}
