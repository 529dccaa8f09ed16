// Command emaild sends the choir's pending article, calendar and reminder
// notices. It runs once and exits, or stays resident when EMAILD_SCHEDULE
// holds a cron expression.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olmmcc/emaild/internal/config"
	"github.com/olmmcc/emaild/internal/runner"
	"github.com/olmmcc/emaild/internal/store"
	"github.com/olmmcc/emaild/pkg/db"
	"github.com/olmmcc/emaild/pkg/health"
	"github.com/olmmcc/emaild/pkg/job"
	"github.com/olmmcc/emaild/pkg/logger"
	"github.com/olmmcc/emaild/pkg/mailer"
	"github.com/olmmcc/emaild/pkg/mailer/gmail"
	"github.com/olmmcc/emaild/pkg/mailer/resend"
	"github.com/olmmcc/emaild/pkg/oauth"
	"github.com/olmmcc/emaild/pkg/redis"
)

const shutdownTimeout = 30 * time.Second

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitConfig
	}

	log, flush := logger.NewWithSentry(cfg.Sentry, stderr, logger.ParseLevel(cfg.App.LogLevel), runner.RunIDExtractor())
	defer flush()

	pool, err := db.Connect(ctx, cfg.DB, log)
	if err != nil {
		log.ErrorContext(ctx, "database unavailable", slog.Any("error", err))
		return exitFailed
	}
	defer pool.Close()

	if cfg.App.AutoMigrate {
		if err := db.Migrate(ctx, pool, store.Migrations(), cfg.DB.MigrationsTable, log); err != nil {
			log.ErrorContext(ctx, "migration failed", slog.Any("error", err))
			return exitFailed
		}
	}

	auth, err := newAuthorizer(cfg)
	if err != nil {
		log.ErrorContext(ctx, "mail transport unavailable", slog.Any("error", err))
		return exitConfig
	}

	checks := health.Checks{"postgres": db.Healthcheck(pool)}
	opts := []runner.Option{
		runner.WithLogger(log),
		runner.WithLocation(cfg.Location()),
		runner.WithMailerConfig(cfg.Mailer),
		runner.WithSchedule(cfg.App.Schedule),
	}
	if cfg.Redis.URL != "" {
		client, err := redis.Open(ctx, cfg.Redis.URL, cfg.Redis.Options()...)
		if err != nil {
			log.ErrorContext(ctx, "redis unavailable", slog.Any("error", err))
			return exitFailed
		}
		defer client.Close()
		checks["redis"] = redis.Healthcheck(client)
		opts = append(opts, runner.WithLock(redis.NewLocker(client), cfg.App.LockKey, cfg.App.LockTTL))
	}

	r := runner.New(store.New(pool, store.WithLocation(cfg.Location())), auth, opts...)

	if cfg.App.Schedule == "" {
		return runOnce(ctx, r, stdout, log)
	}
	return runScheduled(ctx, r, cfg, checks, log)
}

func newAuthorizer(cfg *config.Config) (mailer.Authorizer, error) {
	switch cfg.Mailer.Provider {
	case mailer.ProviderGmail:
		refresher, err := oauth.NewGoogleRefresher(cfg.Google)
		if err != nil {
			return nil, err
		}
		return gmail.New(refresher, cfg.Gmail), nil
	case mailer.ProviderResend:
		sender, err := resend.New(cfg.Resend)
		if err != nil {
			return nil, err
		}
		return sender, nil
	default:
		return nil, fmt.Errorf("%w: %q", mailer.ErrUnknownProvider, cfg.Mailer.Provider)
	}
}

// runOnce prints a single "Error" line on stdout when no access token could
// be obtained; everything else goes to the log.
func runOnce(ctx context.Context, r *runner.Runner, stdout io.Writer, log *slog.Logger) int {
	sum, err := r.Run(ctx)
	switch {
	case errors.Is(err, runner.ErrNoAccessToken):
		fmt.Fprintln(stdout, "Error")
		return exitFailed
	case errors.Is(err, runner.ErrRunLocked):
		log.InfoContext(ctx, "another run is in progress")
		return exitOK
	case err != nil:
		log.ErrorContext(ctx, "run failed", slog.Any("error", err))
		return exitFailed
	case sum.Failed > 0:
		return exitFailed
	}
	return exitOK
}

func runScheduled(ctx context.Context, r *runner.Runner, cfg *config.Config, checks health.Checks, log *slog.Logger) int {
	s, err := job.NewScheduler(
		job.WithScheduledTask(r),
		job.WithLocation(cfg.Location()),
		job.WithLogger(log),
	)
	if err != nil {
		log.ErrorContext(ctx, "invalid schedule", slog.Any("error", err))
		return exitConfig
	}
	if err := s.Start(ctx); err != nil {
		log.ErrorContext(ctx, "scheduler failed to start", slog.Any("error", err))
		return exitFailed
	}
	log.InfoContext(ctx, "waiting for schedule", slog.Time("next", s.Next()))

	if cfg.App.HealthAddr != "" {
		checks["scheduler"] = job.Healthcheck(s)
		srv := health.NewServer(cfg.App.HealthAddr, checks, health.WithLogger(log))
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.ErrorContext(ctx, "health server stopped", slog.Any("error", err))
			}
		}()
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Stop(stopCtx); err != nil {
		log.ErrorContext(stopCtx, "scheduler stopped with a run in flight", slog.Any("error", err))
		return exitFailed
	}
	return exitOK
}
