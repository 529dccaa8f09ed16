// Package runner executes one mailing run: it reads everything the run
// needs concurrently, composes the notices and sends them concurrently.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/olmmcc/emaild/internal/notify"
	"github.com/olmmcc/emaild/pkg/logger"
	"github.com/olmmcc/emaild/pkg/mailer"
	"github.com/olmmcc/emaild/pkg/redis"
)

// Store is the data the runner reads and flips.
type Store interface {
	RefreshTokens(ctx context.Context) ([]string, error)
	ClaimArticle(ctx context.Context, now time.Time) (*notify.Article, error)
	DrainEvents(ctx context.Context) ([]notify.Event, error)
	TodaysEvents(ctx context.Context, day time.Time) ([]notify.Event, error)
	Subscribers(ctx context.Context, table notify.Table, policy notify.SubscriptionPolicy) ([]string, error)
	Release(ctx context.Context, article *notify.Article, events []notify.Event) error
}

// Locker hands out an expiring run lock. Satisfied by *redis.Locker.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// Runner runs the mailing job.
type Runner struct {
	store   Store
	auth    mailer.Authorizer
	logger  *slog.Logger
	now     func() time.Time
	loc     *time.Location
	locker  Locker
	mailCfg mailer.Config

	lockKey  string
	lockTTL  time.Duration
	schedule string
}

// New creates a Runner reading from store and sending through auth.
func New(store Store, auth mailer.Authorizer, opts ...Option) *Runner {
	r := &Runner{
		store:  store,
		auth:   auth,
		logger: logger.NewNope(),
		now:    time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name identifies the runner as a scheduled task.
func (r *Runner) Name() string { return "emaild" }

// Schedule returns the configured cron expression.
func (r *Runner) Schedule() string { return r.schedule }

// Handle runs the job on a schedule tick. A run skipped because another
// one holds the lock is not an error.
func (r *Runner) Handle(ctx context.Context) error {
	_, err := r.Run(ctx)
	if errors.Is(err, ErrRunLocked) {
		r.logger.InfoContext(ctx, "run skipped, lock held elsewhere")
		return nil
	}
	return err
}

// fetched holds the outcome of the read phase. Each field is written by
// exactly one goroutine.
type fetched struct {
	sender   mailer.Sender
	tokenErr error

	article    *notify.Article
	articleErr error

	events    []notify.Event
	eventsErr error

	today    []notify.Event
	todayErr error

	everyone    []string
	everyoneErr error

	reminders    []string
	remindersErr error
}

func (f *fetched) readErrors() []error {
	var errs []error
	for _, err := range []error{f.articleErr, f.eventsErr, f.todayErr, f.everyoneErr, f.remindersErr} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Run performs one mailing run. It fails only when the run lock is held
// elsewhere or no access token can be obtained; in the latter case nothing
// is sent and any claimed rows are released.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	runID := uuid.NewString()
	ctx = WithRunID(ctx, runID)

	if r.locker != nil {
		unlock, err := r.locker.TryLock(ctx, r.lockKey, r.lockTTL)
		switch {
		case errors.Is(err, redis.ErrLockHeld):
			return nil, ErrRunLocked
		case err != nil:
			return nil, errors.Join(ErrLock, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				r.logger.WarnContext(ctx, "failed to release run lock", slog.Any("error", err))
			}
		}()
	}

	now := r.now()
	f := r.fetch(ctx, now)

	if f.tokenErr != nil {
		r.release(ctx, f.article, f.events)
		r.logger.ErrorContext(ctx, "run aborted", slog.Any("error", f.tokenErr))
		return nil, f.tokenErr
	}

	sum := &Summary{RunID: runID, ReadErrors: f.readErrors()}
	for _, err := range sum.ReadErrors {
		r.logger.ErrorContext(ctx, "read failed", slog.Any("error", err))
	}

	var articleTitle string
	if f.article != nil {
		articleTitle = f.article.Title
	}

	type planned struct {
		notice     notify.Notice
		ok         bool
		readErr    error
		recipients []string
	}
	plan := []planned{
		{readErr: f.everyoneErr, recipients: f.everyone},
		{readErr: f.everyoneErr, recipients: f.everyone},
		{readErr: f.remindersErr, recipients: f.reminders},
	}
	plan[0].notice, plan[0].ok = notify.ArticleNotice(articleTitle)
	plan[1].notice, plan[1].ok = notify.CalendarNotice(f.events)
	plan[2].notice, plan[2].ok = notify.ReminderNotice(f.today)

	results := make([]SendResult, len(plan))
	kinds := []notify.Kind{notify.KindArticle, notify.KindCalendar, notify.KindReminder}
	m := mailer.New(f.sender, r.mailCfg)

	var g errgroup.Group
	for i, p := range plan {
		res := &results[i]
		res.Kind = kinds[i]
		res.Recipients = len(p.recipients)

		switch {
		case p.ok && p.readErr != nil:
			res.Status, res.Reason, res.Err = StatusSkipped, ReasonReadFailed, p.readErr
			continue
		case !p.ok:
			res.Status, res.Reason = StatusSkipped, ReasonNothingToSend
			continue
		case len(p.recipients) == 0:
			res.Status, res.Reason = StatusSkipped, ReasonNoRecipients
			continue
		}

		g.Go(func() error {
			err := m.Send(ctx, &mailer.Email{
				BCC:     p.recipients,
				Subject: p.notice.Subject,
				Text:    p.notice.Body,
				Tags:    mailer.Tags{"notice": string(p.notice.Kind)},
			})
			if err != nil {
				res.Status, res.Err = StatusFailed, err
				r.logger.ErrorContext(ctx, "send failed",
					slog.String("notice", string(p.notice.Kind)),
					slog.Int("recipients", len(p.recipients)),
					slog.Any("error", err),
				)
				return nil
			}
			res.Status = StatusSent
			r.logger.InfoContext(ctx, "notice sent",
				slog.String("notice", string(p.notice.Kind)),
				slog.Int("recipients", len(p.recipients)),
			)
			return nil
		})
	}
	_ = g.Wait()

	// A claimed article or drained batch that could not reach anyone is put back.
	var (
		unsentArticle *notify.Article
		unsentEvents  []notify.Event
	)
	if results[0].Reason == ReasonReadFailed {
		unsentArticle = f.article
	}
	if results[1].Reason == ReasonReadFailed {
		unsentEvents = f.events
	}
	r.release(ctx, unsentArticle, unsentEvents)

	for _, res := range results {
		sum.add(res)
	}
	sum.Duration = time.Since(start)
	r.logger.InfoContext(ctx, "run completed", slog.Any("summary", sum))

	return sum, nil
}

func (r *Runner) fetch(ctx context.Context, now time.Time) *fetched {
	var (
		f fetched
		g errgroup.Group
	)

	g.Go(func() error {
		f.sender, f.tokenErr = r.authorize(ctx)
		return nil
	})
	g.Go(func() error {
		f.article, f.articleErr = r.store.ClaimArticle(ctx, now)
		if f.articleErr != nil {
			f.articleErr = fmt.Errorf("claim article: %w", f.articleErr)
		}
		return nil
	})
	g.Go(func() error {
		f.events, f.eventsErr = r.store.DrainEvents(ctx)
		if f.eventsErr != nil {
			f.eventsErr = fmt.Errorf("drain calendar: %w", f.eventsErr)
		}
		return nil
	})
	g.Go(func() error {
		f.today, f.todayErr = r.store.TodaysEvents(ctx, now.In(r.loc))
		if f.todayErr != nil {
			f.todayErr = fmt.Errorf("today's events: %w", f.todayErr)
		}
		return nil
	})
	g.Go(func() error {
		f.everyone, f.everyoneErr = r.recipients(ctx, notify.EveryoneSources())
		if f.everyoneErr != nil {
			f.everyoneErr = fmt.Errorf("everyone list: %w", f.everyoneErr)
		}
		return nil
	})
	g.Go(func() error {
		f.reminders, f.remindersErr = r.recipients(ctx, notify.ReminderSources())
		if f.remindersErr != nil {
			f.remindersErr = fmt.Errorf("reminder list: %w", f.remindersErr)
		}
		return nil
	})

	_ = g.Wait()
	return &f
}

func (r *Runner) authorize(ctx context.Context) (mailer.Sender, error) {
	tokens, err := r.store.RefreshTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoAccessToken, err)
	}
	token, ok := notify.FirstRefreshToken(tokens)
	if !ok {
		return nil, ErrNoRefreshToken
	}
	sender, err := r.auth.Authorize(ctx, token)
	if err != nil {
		return nil, errors.Join(ErrTokenExchange, err)
	}
	return sender, nil
}

// recipients resolves every source concurrently and merges the results.
// A failed source fails the whole list.
func (r *Runner) recipients(ctx context.Context, sources []notify.Source) ([]string, error) {
	lists := make([][]string, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			emails, err := r.store.Subscribers(ctx, src.Table, src.Policy)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", src.Table, src.Policy, err)
			}
			lists[i] = emails
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return notify.MergeRecipients(lists...), nil
}

func (r *Runner) release(ctx context.Context, article *notify.Article, events []notify.Event) {
	if article == nil && len(events) == 0 {
		return
	}
	if err := r.store.Release(context.WithoutCancel(ctx), article, events); err != nil {
		r.logger.ErrorContext(ctx, "failed to release claimed rows", slog.Any("error", err))
		return
	}
	r.logger.WarnContext(ctx, "released claimed rows",
		slog.Bool("article", article != nil),
		slog.Int("events", len(events)),
	)
}
