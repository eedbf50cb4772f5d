package cluster

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// DefaultVirtualNodes is the number of ring points placed per host. More
// points smooth the distribution at the cost of a larger ring.
const DefaultVirtualNodes = 160

// Router maps a physical key to a position in the ordered host list. A
// Router must be deterministic: the same key always yields the same
// position for the lifetime of the router.
type Router interface {
	// Pick returns the host position for key.
	Pick(key string) int
}

// Ring is a consistent-hash router. Each host label is placed on a 64-bit
// xxhash ring at a fixed number of virtual points; a key routes to the
// first point at or after its own hash. Adding or removing a host moves
// only the keys adjacent to its points.
type Ring struct {
	points []ringPoint
}

type ringPoint struct {
	hash uint64
	host int
}

var _ Router = (*Ring)(nil)

// NewRing builds a ring over the given host labels. Labels should be
// position-independent (e.g. "addr/db") so that resharding keeps unrelated
// keys in place. vnodes <= 0 selects DefaultVirtualNodes.
func NewRing(labels []string, vnodes int) *Ring {
	if vnodes <= 0 {
		vnodes = DefaultVirtualNodes
	}

	points := make([]ringPoint, 0, len(labels)*vnodes)
	for host, label := range labels {
		for v := 0; v < vnodes; v++ {
			h := xxhash.Sum64String(fmt.Sprintf("%s#%d", label, v))
			points = append(points, ringPoint{hash: h, host: host})
		}
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].hash != points[j].hash {
			return points[i].hash < points[j].hash
		}
		// Stable ordering when two labels collide on a point.
		return points[i].host < points[j].host
	})

	return &Ring{points: points}
}

// Pick returns the host position owning key.
func (r *Ring) Pick(key string) int {
	if len(r.points) == 0 {
		return -1
	}
	h := xxhash.Sum64String(key)
	i := sort.Search(len(r.points), func(i int) bool {
		return r.points[i].hash >= h
	})
	if i == len(r.points) {
		i = 0
	}
	return r.points[i].host
}

// Modulo is a simple partitioning router: FNV-1a hash of the key modulo the
// host count. Cheaper than a ring but remaps most keys when the host list
// changes size.
type Modulo struct {
	n int
}

var _ Router = (*Modulo)(nil)

// NewModulo creates a modulo router over n hosts.
func NewModulo(n int) *Modulo {
	return &Modulo{n: n}
}

// Pick returns the host position owning key.
func (m *Modulo) Pick(key string) int {
	if m.n <= 0 {
		return -1
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(m.n))
}
