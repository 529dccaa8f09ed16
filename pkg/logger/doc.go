// Package logger builds the job's structured [log/slog] logger.
//
// Records are written as JSON to the writer the caller picks (the job
// uses stderr so stdout stays free for its one-line diagnostic).
// [ContextExtractor] functions add request-scoped attributes such as the
// run ID to every record logged with a context:
//
//	log := logger.New(os.Stderr, slog.LevelInfo, runner.RunIDExtractor())
//	log.InfoContext(ctx, "run finished", slog.Int("sent", 2))
//
// [NewWithSentry] additionally forwards warnings and errors to Sentry when
// SENTRY_DSN is set and falls back to local output otherwise.
package logger
