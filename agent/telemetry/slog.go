package telemetry

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger builds a Logger backed by log/slog. The level is read from
// the AGENT_LOG_LEVEL environment variable (debug/info/warn/error,
// case-insensitive) unless level is non-empty, in which case it takes
// precedence. Unknown or empty values default to info.
func NewSlogLogger(level string) Logger {
	if level == "" {
		level = os.Getenv("AGENT_LOG_LEVEL")
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: resolveLevel(level)})
	return slogLogger{l: slog.New(handler)}
}

func resolveLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (s slogLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	s.l.DebugContext(ctx, msg, keyvals...)
}

func (s slogLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	s.l.InfoContext(ctx, msg, keyvals...)
}

func (s slogLogger) Warn(ctx context.Context, msg string, keyvals ...any) {
	s.l.WarnContext(ctx, msg, keyvals...)
}

func (s slogLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	s.l.ErrorContext(ctx, msg, keyvals...)
}
