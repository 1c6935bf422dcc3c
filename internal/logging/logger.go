// Package logging wraps slog with the request-scoped attributes this
// service attaches to its log lines.
package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/pharmatch/chatbot/internal/middleware"
)

// Logger resolves request-scoped attributes out of a context before
// emitting each record.
type Logger struct {
	*slog.Logger
}

// New builds a logger at the given level. format selects the handler:
// "text" for local runs, anything else gets JSON.
func New(level slog.Level, format string) *Logger {
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// WithContext resolves the request ID from ctx, if present, into a
// child logger so every record of one webhook delivery shares it.
func (l *Logger) WithContext(ctx context.Context) *slog.Logger {
	if reqID := middleware.GetRequestID(ctx); reqID != "" {
		return l.Logger.With(slog.String("request_id", reqID))
	}
	return l.Logger
}

func (l *Logger) log(ctx context.Context, level slog.Level, msg string, args ...any) {
	l.WithContext(ctx).Log(ctx, level, msg, args...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelDebug, msg, args...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelInfo, msg, args...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelWarn, msg, args...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.log(ctx, slog.LevelError, msg, args...)
}

// With returns a child logger carrying args on every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

var levelNames = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// ParseLevel maps a config level string to its slog.Level. Unknown
// strings fall back to info.
func ParseLevel(level string) slog.Level {
	if parsed, ok := levelNames[level]; ok {
		return parsed
	}
	return slog.LevelInfo
}

// SetDefault routes slog.Default and the log package through l.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
