// Package cluster owns the pool of storage connections and the routing of
// physical keys onto them. One store.Conn is held per configured host for
// the lifetime of the cluster; Close releases all of them.
package cluster

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/sandsnake/store"
)

// ErrRouting indicates that a physical key could not be mapped to a host.
type ErrRouting struct {
	Key    string
	Reason string
}

func (e *ErrRouting) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("routing failed: %s", e.Reason)
	}
	return fmt.Sprintf("routing %q failed: %s", e.Key, e.Reason)
}

// Cluster is an ordered, immutable set of live connections plus the router
// that assigns keys to them. Safe for concurrent use; the zero value is not
// usable, construct with New.
type Cluster struct {
	conns  []store.Conn
	router Router
}

// New creates a cluster over the given connections. The connection order
// must match the order of the configured host list; routing stability
// depends on it. A nil router selects a consistent-hash ring over the
// connection labels.
func New(conns []store.Conn, router Router) (*Cluster, error) {
	if len(conns) == 0 {
		return nil, &ErrRouting{Reason: "no hosts configured"}
	}
	if router == nil {
		labels := make([]string, len(conns))
		for i, conn := range conns {
			labels[i] = conn.Addr()
		}
		router = NewRing(labels, 0)
	}
	return &Cluster{conns: conns, router: router}, nil
}

// Len returns the number of pooled connections.
func (c *Cluster) Len() int { return len(c.conns) }

// Conn returns the connection at position i.
func (c *Cluster) Conn(i int) store.Conn { return c.conns[i] }

// Conns returns the pooled connections in host-list order. The returned
// slice must not be mutated.
func (c *Cluster) Conns() []store.Conn { return c.conns }

// RouteIndex maps a physical key to its connection position.
func (c *Cluster) RouteIndex(key string) (int, error) {
	if key == "" {
		return 0, &ErrRouting{Key: key, Reason: "empty key"}
	}
	i := c.router.Pick(key)
	if i < 0 || i >= len(c.conns) {
		return 0, &ErrRouting{Key: key, Reason: fmt.Sprintf("router picked host %d of %d", i, len(c.conns))}
	}
	return i, nil
}

// Route maps a physical key to its connection.
func (c *Cluster) Route(key string) (store.Conn, error) {
	i, err := c.RouteIndex(key)
	if err != nil {
		return nil, err
	}
	return c.conns[i], nil
}

// Ping probes every pooled connection and returns the first failure.
func (c *Cluster) Ping(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, conn := range c.conns {
		conn := conn
		g.Go(func() error {
			return conn.Ping(ctx)
		})
	}
	return g.Wait()
}

// Close tears down every pooled connection and reports the first error.
func (c *Cluster) Close() error {
	var g errgroup.Group
	for _, conn := range c.conns {
		g.Go(conn.Close)
	}
	return g.Wait()
}
