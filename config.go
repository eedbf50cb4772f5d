package sandsnake

import (
	"time"

	gojson "github.com/goccy/go-json"
)

// Config describes a backend: which concrete implementation to use and the
// cluster it talks to. Configuration is immutable after construction;
// changing the host list means creating a new backend.
type Config struct {
	// Backend names the concrete backend constructor, e.g. "redis" or
	// "memory". See RegisterBackend.
	Backend string `json:"backend"`

	// Prefix namespaces every physical key. Defaults to "ssnake:".
	Prefix string `json:"prefix,omitempty"`

	// Settings carries the cluster topology.
	Settings Settings `json:"settings"`
}

// Settings is the cluster topology: an ordered host list plus shared
// defaults. Host order matters; routing stability depends on it.
type Settings struct {
	// Defaults are merged into every host entry: zero-valued host fields
	// inherit from here. Merging cannot tell an explicit zero apart from
	// an omitted field, so a host cannot override a non-zero default back
	// to zero (e.g. "db": 0 against a non-zero Defaults.DB); leave a
	// default unset instead of overriding it per host.
	Defaults Host `json:"defaults"`

	// Hosts is the ordered list of backend hosts. Must not be empty.
	Hosts []Host `json:"hosts"`

	// Router selects the partitioning scheme: "consistent" (default) or
	// "modulo".
	Router string `json:"router,omitempty"`

	// VirtualNodes tunes the consistent-hash ring; <= 0 uses the default.
	VirtualNodes int `json:"virtual_nodes,omitempty"`
}

// Host holds the connection parameters of one backend host.
type Host struct {
	Addr         string        `json:"addr,omitempty"`
	DB           int           `json:"db,omitempty"`
	Password     string        `json:"password,omitempty"`
	DialTimeout  time.Duration `json:"dial_timeout,omitempty"`
	ReadTimeout  time.Duration `json:"read_timeout,omitempty"`
	WriteTimeout time.Duration `json:"write_timeout,omitempty"`
	PoolSize     int           `json:"pool_size,omitempty"`
	MaxRPS       int           `json:"max_rps,omitempty"`
}

// merge fills zero-valued fields of h from defaults. See the caveat on
// Settings.Defaults: an explicit zero is indistinguishable from an omitted
// field and inherits the default.
func (h Host) merge(defaults Host) Host {
	if h.Addr == "" {
		h.Addr = defaults.Addr
	}
	if h.DB == 0 {
		h.DB = defaults.DB
	}
	if h.Password == "" {
		h.Password = defaults.Password
	}
	if h.DialTimeout == 0 {
		h.DialTimeout = defaults.DialTimeout
	}
	if h.ReadTimeout == 0 {
		h.ReadTimeout = defaults.ReadTimeout
	}
	if h.WriteTimeout == 0 {
		h.WriteTimeout = defaults.WriteTimeout
	}
	if h.PoolSize == 0 {
		h.PoolSize = defaults.PoolSize
	}
	if h.MaxRPS == 0 {
		h.MaxRPS = defaults.MaxRPS
	}
	return h
}

// mergedHosts returns the host list with defaults applied to each entry.
func (c Config) mergedHosts() []Host {
	hosts := make([]Host, len(c.Settings.Hosts))
	for i, h := range c.Settings.Hosts {
		hosts[i] = h.merge(c.Settings.Defaults)
	}
	return hosts
}

func (c Config) prefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	return defaultPrefix
}

// validate checks everything that can be checked without touching the
// network.
func (c Config) validate() error {
	if c.Backend == "" {
		return configError("backend name is required", nil)
	}
	if len(c.Settings.Hosts) == 0 {
		return configError("no hosts configured", nil)
	}
	switch c.Settings.Router {
	case "", RouterConsistent, RouterModulo:
	default:
		return configError("unknown router "+c.Settings.Router, nil)
	}
	return nil
}

// ParseConfig decodes a JSON configuration document. Duration fields are
// nanosecond counts.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := gojson.Unmarshal(data, &cfg); err != nil {
		return Config{}, configError("invalid config document", err)
	}
	return cfg, nil
}
