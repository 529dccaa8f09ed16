package logger

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel selects what reaches Sentry: warnings and errors, or errors only.
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"WARN"`
}

// NewWithSentry creates a logger writing JSON to w and, when a DSN is
// configured, forwarding warnings and errors to Sentry. The returned flush
// function must run before the process exits; a one-shot job otherwise
// loses buffered events.
func NewWithSentry(cfg SentryConfig, w io.Writer, level slog.Level, extractors ...ContextExtractor) (*slog.Logger, func()) {
	local := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	noop := func() {}

	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noop
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noop
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	flush := func() { sentry.Flush(2 * time.Second) }
	return slog.New(NewLogHandlerDecorator(newMultiHandler(local, remote), extractors...)), flush
}
