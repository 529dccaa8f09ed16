package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New creates a JSON logger writing to w with optional context extractors.
func New(w io.Writer, level slog.Level, extractors ...ContextExtractor) *slog.Logger {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewLogHandlerDecorator(h, extractors...))
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values fall
// back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
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
