package cluster

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/sandsnake/store"
	"github.com/hupe1980/sandsnake/store/memory"
)

func newTestCluster(t *testing.T, n int) *Cluster {
	t.Helper()

	conns := make([]store.Conn, n)
	for i := range conns {
		conns[i] = memory.New(fmt.Sprintf("mem/%d", i))
	}
	c, err := New(conns, nil)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("EmptyHostList", func(t *testing.T) {
		_, err := New(nil, nil)
		require.Error(t, err)

		var rerr *ErrRouting
		require.ErrorAs(t, err, &rerr)
	})

	t.Run("DefaultRouter", func(t *testing.T) {
		c := newTestCluster(t, 3)
		assert.Equal(t, 3, c.Len())

		conn, err := c.Route("some-key")
		require.NoError(t, err)
		assert.NotNil(t, conn)
	})

	t.Run("ConnsKeepHostOrder", func(t *testing.T) {
		c := newTestCluster(t, 3)

		conns := c.Conns()
		require.Len(t, conns, c.Len())
		for i, conn := range conns {
			assert.Same(t, c.Conn(i), conn)
			assert.Equal(t, fmt.Sprintf("mem/%d", i), conn.Addr())
		}
	})
}

func TestRoute(t *testing.T) {
	c := newTestCluster(t, 3)

	t.Run("Stable", func(t *testing.T) {
		first, err := c.RouteIndex("ssnake:obj:user:1:idx:homefeed")
		require.NoError(t, err)
		for i := 0; i < 100; i++ {
			pos, err := c.RouteIndex("ssnake:obj:user:1:idx:homefeed")
			require.NoError(t, err)
			assert.Equal(t, first, pos)
		}
	})

	t.Run("EmptyKey", func(t *testing.T) {
		_, err := c.Route("")
		var rerr *ErrRouting
		require.ErrorAs(t, err, &rerr)
	})
}

func TestPingAndClose(t *testing.T) {
	ctx := context.Background()
	c := newTestCluster(t, 2)

	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Close())

	// All pooled connections are gone after Close.
	err := c.Ping(ctx)
	var cerr *store.ErrConnection
	require.ErrorAs(t, err, &cerr)
}
