package sandsnake

import (
	"log/slog"

	"github.com/hupe1980/sandsnake/codec"
)

type options struct {
	codec   codec.Codec
	metrics MetricsCollector
	logger  *Logger
}

// Option configures New behavior.
type Option func(*options)

// WithCodec configures the codec used to encode member payloads before they
// hit the store. Members written with one codec must be read and removed
// with the same codec. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &sandsnake.BasicMetricsCollector{}
//	ss, _ := sandsnake.New(cfg, sandsnake.WithMetricsCollector(metrics))
//	// ... use ss ...
//	stats := metrics.Stats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithLogger configures structured logging for operations.
//
// Example with JSON logging:
//
//	logger := sandsnake.NewJSONLogger(slog.LevelInfo)
//	ss, _ := sandsnake.New(cfg, sandsnake.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:   codec.Default,
		metrics: NoopMetricsCollector{},
		logger:  NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
