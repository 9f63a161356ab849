package holograph

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/holograph/model"
)

// Logger wraps slog.Logger with store-specific context.
// This provides structured logging with consistent field names.
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
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	}))
}

// WithComponent adds a component field to the logger.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", name),
	}
}

// LogInsert logs an insert operation.
func (l *Logger) LogInsert(ctx context.Context, k model.Key, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert failed",
			"triple", k.String(),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert completed",
			"triple", k.String(),
		)
	}
}

// LogQuery logs an exact query. a and b are the two known fields.
func (l *Logger) LogQuery(ctx context.Context, kind, a, b string, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"kind", kind,
			"fields", []string{a, b},
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"kind", kind,
			"fields", []string{a, b},
			"results", results,
		)
	}
}

// LogResonate logs a resonance query.
func (l *Logger) LogResonate(ctx context.Context, q Query, threshold float64, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resonate failed",
			"query", q.String(),
			"threshold", threshold,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "resonate completed",
			"query", q.String(),
			"threshold", threshold,
			"results", results,
		)
	}
}

// LogSave logs a snapshot write.
func (l *Logger) LogSave(ctx context.Context, bytes int64, triples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot saved",
			"bytes", bytes,
			"triples", triples,
		)
	}
}

// LogLoad logs a snapshot load.
func (l *Logger) LogLoad(ctx context.Context, triples int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "snapshot loaded",
			"triples", triples,
		)
	}
}
