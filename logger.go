package tantivy

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger so store operations log with consistent field
// names.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler; a nil handler falls back to info-level text on
// stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON to stderr at the given minimum level.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs human-readable text to stderr at the given minimum
// level.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithCount returns a logger carrying a count field on every record.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{Logger: l.Logger.With("count", count)}
}

// LogSerialize records the outcome of serializing docs into bytes of store
// output.
func (l *Logger) LogSerialize(ctx context.Context, docs int, bytes int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "serialize failed", "docs", docs, "error", err)
		return
	}
	l.InfoContext(ctx, "serialize completed", "docs", docs, "bytes", bytes)
}

// LogSave records the outcome of persisting a file.
func (l *Logger) LogSave(ctx context.Context, filename string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed", "filename", filename, "error", err)
		return
	}
	l.InfoContext(ctx, "save completed", "filename", filename)
}
