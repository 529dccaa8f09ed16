package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olmmcc/emaild/pkg/logger"
)

// Scheduler runs registered tasks on their cron schedules.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	tasks  int

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	baseCtx context.Context
}

// NewScheduler parses every task schedule and prepares the scheduler.
// Call Start to begin running tasks.
func NewScheduler(opts ...Option) (*Scheduler, error) {
	cfg := &config{location: time.Local}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.logger == nil {
		cfg.logger = logger.NewNope()
	}
	if len(cfg.schedules) == 0 {
		return nil, ErrNoTasks
	}

	cl := cronLogger{log: cfg.logger}
	s := &Scheduler{
		logger: cfg.logger,
		tasks:  len(cfg.schedules),
		cron: cron.New(
			cron.WithLocation(cfg.location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		baseCtx: context.Background(),
	}

	for _, sched := range cfg.schedules {
		schedule, err := parseCronSchedule(sched.schedule)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidSchedule, sched.schedule, err)
		}
		s.cron.Schedule(schedule, s.wrap(sched))
	}

	return s, nil
}

func (s *Scheduler) wrap(sched scheduleConfig) cron.Job {
	return cron.FuncJob(func() {
		s.mu.Lock()
		ctx := s.baseCtx
		s.mu.Unlock()

		start := time.Now()
		s.logger.DebugContext(ctx, "executing task", slog.String("task", sched.name))

		if err := sched.handler(ctx); err != nil {
			s.logger.ErrorContext(ctx, "task failed",
				slog.String("task", sched.name),
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)
			return
		}

		s.logger.DebugContext(ctx, "task completed",
			slog.String("task", sched.name),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

// Start begins running tasks. Handlers receive a context derived from ctx
// that is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.cron.Start()
	s.started = true

	s.logger.InfoContext(ctx, "scheduler started", slog.Int("tasks", s.tasks))
	return nil
}

// Stop stops scheduling new runs and waits for running tasks until ctx is
// done. Tasks still running when ctx ends have their context cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.started = false
	cancel := s.cancel
	s.mu.Unlock()

	defer cancel()

	select {
	case <-s.cron.Stop().Done():
		s.logger.InfoContext(ctx, "scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("job: stop scheduler: %w", ctx.Err())
	}
}

// Next returns the earliest upcoming run, or the zero time when the
// scheduler is not running.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if e.Next.IsZero() {
			continue
		}
		if next.IsZero() || e.Next.Before(next) {
			next = e.Next
		}
	}
	return next
}

func parseCronSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, slog.Any("error", err))...)
}
