package sandsnake

import (
	"fmt"
	"sync"

	"github.com/hupe1980/sandsnake/backend"
	"github.com/hupe1980/sandsnake/cluster"
	"github.com/hupe1980/sandsnake/engine"
	"github.com/hupe1980/sandsnake/store"
	memorystore "github.com/hupe1980/sandsnake/store/memory"
	redisstore "github.com/hupe1980/sandsnake/store/redis"
)

// Router names accepted in Settings.Router.
const (
	RouterConsistent = "consistent"
	RouterModulo     = "modulo"
)

const defaultPrefix = engine.DefaultPrefix

// Factory constructs a concrete backend from a validated configuration. A
// factory must either return a fully capable backend.Backend or an error;
// there are no partially implemented backends.
type Factory func(cfg Config) (backend.Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// RegisterBackend makes a backend constructor available under name.
// Registering an existing name overwrites it. Safe for concurrent use,
// though registration normally happens during init.
func RegisterBackend(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

func backendFactory(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

func init() {
	RegisterBackend("redis", newRedisBackend)
	RegisterBackend("memory", newMemoryBackend)
}

// hostLabel identifies a host on the consistent-hash ring. Labels are
// position-independent so resharding only moves keys adjacent to the
// changed host.
func hostLabel(h Host) string {
	return fmt.Sprintf("%s/%d", h.Addr, h.DB)
}

func routerFor(s Settings, labels []string) cluster.Router {
	if s.Router == RouterModulo {
		return cluster.NewModulo(len(labels))
	}
	return cluster.NewRing(labels, s.VirtualNodes)
}

func newEngine(cfg Config, conns []store.Conn, labels []string) (backend.Backend, error) {
	c, err := cluster.New(conns, routerFor(cfg.Settings, labels))
	if err != nil {
		return nil, err
	}
	return engine.New(c, engine.WithPrefix(cfg.prefix())), nil
}

// newRedisBackend wires one go-redis connection per merged host descriptor
// through the configured router.
func newRedisBackend(cfg Config) (backend.Backend, error) {
	hosts := cfg.mergedHosts()
	conns := make([]store.Conn, len(hosts))
	labels := make([]string, len(hosts))
	for i, h := range hosts {
		if h.Addr == "" {
			h.Addr = "localhost:6379"
		}
		conns[i] = redisstore.New(redisstore.Options{
			Addr:         h.Addr,
			DB:           h.DB,
			Password:     h.Password,
			DialTimeout:  h.DialTimeout,
			ReadTimeout:  h.ReadTimeout,
			WriteTimeout: h.WriteTimeout,
			PoolSize:     h.PoolSize,
			MaxRPS:       h.MaxRPS,
		})
		labels[i] = hostLabel(h)
	}
	return newEngine(cfg, conns, labels)
}

// newMemoryBackend creates one in-process store per host entry, so routing
// and fan-out behave exactly as with a real cluster.
func newMemoryBackend(cfg Config) (backend.Backend, error) {
	hosts := cfg.mergedHosts()
	conns := make([]store.Conn, len(hosts))
	labels := make([]string, len(hosts))
	for i, h := range hosts {
		label := hostLabel(h)
		conns[i] = memorystore.New(label)
		labels[i] = label
	}
	return newEngine(cfg, conns, labels)
}
