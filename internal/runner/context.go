package runner

import (
	"context"
	"log/slog"

	"github.com/olmmcc/emaild/pkg/logger"
)

type runIDKey struct{}

// WithRunID stores the run ID in ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunID returns the run ID stored in ctx.
func RunID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// RunIDExtractor adds a run_id attribute to log records made within a run.
func RunIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		id, ok := RunID(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.String("run_id", id), true
	}
}
