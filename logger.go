package sandsnake

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with sandsnake-specific helpers so every
// operation logs with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// LogAdd logs a fan-out add operation.
func (l *Logger) LogAdd(ctx context.Context, obj string, indexes []string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "add failed",
			"object", obj,
			"indexes", indexes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "add completed",
			"object", obj,
			"indexes", indexes,
		)
	}
}

// LogRemove logs a fan-out remove operation.
func (l *Logger) LogRemove(ctx context.Context, obj string, indexes []string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"object", obj,
			"indexes", indexes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"object", obj,
			"indexes", indexes,
		)
	}
}

// LogRange logs a rank- or score-range query.
func (l *Logger) LogRange(ctx context.Context, obj, index string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "range failed",
			"object", obj,
			"index", index,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "range completed",
			"object", obj,
			"index", index,
			"results", results,
		)
	}
}

// LogCount logs a count operation.
func (l *Logger) LogCount(ctx context.Context, obj, index string, count int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "count failed",
			"object", obj,
			"index", index,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "count completed",
			"object", obj,
			"index", index,
			"count", count,
		)
	}
}

// LogRemoveIndex logs an index removal.
func (l *Logger) LogRemoveIndex(ctx context.Context, obj, index string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove index failed",
			"object", obj,
			"index", index,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "index removed",
			"object", obj,
			"index", index,
		)
	}
}

// LogIndexes logs an index listing.
func (l *Logger) LogIndexes(ctx context.Context, obj string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "list indexes failed",
			"object", obj,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "list indexes completed",
			"object", obj,
			"results", results,
		)
	}
}

// LogUnion logs a union query.
func (l *Logger) LogUnion(ctx context.Context, obj string, indexes []string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "union failed",
			"object", obj,
			"indexes", indexes,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "union completed",
			"object", obj,
			"indexes", indexes,
			"results", results,
		)
	}
}
