package runner_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/olmmcc/emaild/internal/notify"
	"github.com/olmmcc/emaild/internal/runner"
	"github.com/olmmcc/emaild/pkg/logger"
	"github.com/olmmcc/emaild/pkg/mailer"
	"github.com/olmmcc/emaild/pkg/redis"
)

type mockSender struct{ mock.Mock }

func (m *mockSender) Send(ctx context.Context, e *mailer.Email) error {
	return m.Called(ctx, e).Error(0)
}

type mockAuthorizer struct{ mock.Mock }

func (m *mockAuthorizer) Authorize(ctx context.Context, refreshToken string) (mailer.Sender, error) {
	args := m.Called(ctx, refreshToken)
	s, _ := args.Get(0).(mailer.Sender)
	return s, args.Error(1)
}

type row[T any] struct {
	value   T
	pending bool
}

type fakeStore struct {
	mu sync.Mutex

	tokens    []string
	tokensErr error
	articles  []*row[notify.Article]
	events    []*row[notify.Event]
	drainErr  error
	subs      map[notify.Source][]string
	subsErr   map[notify.Source]error
	calls     int

	releasedArticle *notify.Article
	releasedEvents  []notify.Event
}

func (s *fakeStore) RefreshTokens(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.tokens, s.tokensErr
}

func (s *fakeStore) ClaimArticle(_ context.Context, now time.Time) (*notify.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	var pending []notify.Article
	for _, r := range s.articles {
		if r.pending {
			pending = append(pending, r.value)
		}
	}
	a, ok := notify.SelectArticle(pending, now)
	if !ok {
		return nil, nil
	}
	for _, r := range s.articles {
		if r.value.ID == a.ID {
			r.pending = false
		}
	}
	return &a, nil
}

func (s *fakeStore) DrainEvents(context.Context) ([]notify.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.drainErr != nil {
		return nil, s.drainErr
	}

	var out []notify.Event
	for _, r := range s.events {
		if r.pending {
			out = append(out, r.value)
			r.pending = false
		}
	}
	return out, nil
}

func (s *fakeStore) TodaysEvents(_ context.Context, day time.Time) ([]notify.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++

	var out []notify.Event
	for _, r := range s.events {
		d := r.value.Date
		if d.Year() == day.Year() && d.Month() == day.Month() && d.Day() == day.Day() {
			out = append(out, r.value)
		}
	}
	return out, nil
}

func (s *fakeStore) Subscribers(_ context.Context, table notify.Table, policy notify.SubscriptionPolicy) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	src := notify.Source{Table: table, Policy: policy}
	return s.subs[src], s.subsErr[src]
}

func (s *fakeStore) Release(_ context.Context, article *notify.Article, events []notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releasedArticle = article
	s.releasedEvents = events
	if article != nil {
		for _, r := range s.articles {
			if r.value.ID == article.ID {
				r.pending = true
			}
		}
	}
	for _, e := range events {
		for _, r := range s.events {
			if r.value.ID == e.ID {
				r.pending = true
			}
		}
	}
	return nil
}

type fakeLocker struct {
	err      error
	unlocked bool
}

func (l *fakeLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	return func(context.Context) error {
		l.unlocked = true
		return nil
	}, nil
}

var (
	now     = time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC)
	today   = time.Date(2026, time.October, 16, 0, 0, 0, 0, time.UTC)
	later   = time.Date(2026, time.October, 24, 0, 0, 0, 0, time.UTC)
	mailCfg = mailer.Config{SenderEmail: "choir@olmmcc.tk", SenderName: "Justus"}
)

func at(d time.Time, h, m int) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), h, m, 0, 0, time.UTC)
}

// newStore builds the common fixture: one eligible article, one pending
// practice next week and the recipient lists {a,c} {b} {a} {}.
func newStore() *fakeStore {
	return &fakeStore{
		tokens: []string{"", "1//stored"},
		articles: []*row[notify.Article]{
			{value: notify.Article{ID: 1, Title: "Spring Concert Program", Expiry: today.AddDate(0, 0, 1)}, pending: true},
		},
		events: []*row[notify.Event]{
			{value: notify.Event{ID: 5, Title: "Practice", Date: later, Start: at(later, 9, 0), End: at(later, 10, 30), IsPractice: true}, pending: true},
		},
		subs: map[notify.Source][]string{
			{Table: notify.TableUsers, Policy: notify.PolicyNewsletter}: {"a@example.com", "c@example.com"},
			{Table: notify.TableUsers, Policy: notify.PolicyReminders}:  {"b@example.com"},
			{Table: notify.TableAdmin, Policy: notify.PolicyNewsletter}: {"a@example.com"},
			{Table: notify.TableAdmin, Policy: notify.PolicyReminders}:  {},
		},
		subsErr: map[notify.Source]error{},
	}
}

func newRunner(store runner.Store, auth mailer.Authorizer, opts ...runner.Option) *runner.Runner {
	opts = append([]runner.Option{
		runner.WithClock(func() time.Time { return now }),
		runner.WithLocation(time.UTC),
		runner.WithMailerConfig(mailCfg),
	}, opts...)
	return runner.New(store, auth, opts...)
}

func subject(s string) any {
	return mock.MatchedBy(func(e *mailer.Email) bool { return e.Subject == s })
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("article and calendar notices", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		sender := &mockSender{}
		sender.On("Send", mock.Anything, subject("Spring Concert Program")).Return(nil).Once()
		sender.On("Send", mock.Anything, subject(notify.CalendarSubject)).Return(nil).Once()
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(sender, nil).Once()

		sum, err := newRunner(store, auth).Run(context.Background())
		require.NoError(t, err)

		sender.AssertExpectations(t)
		sender.AssertNumberOfCalls(t, "Send", 2)
		auth.AssertExpectations(t)

		for _, call := range sender.Calls {
			e := call.Arguments.Get(1).(*mailer.Email)
			assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, e.BCC)
			assert.Equal(t, "Justus <choir@olmmcc.tk>", e.From)
		}

		assert.False(t, store.articles[0].pending)
		assert.False(t, store.events[0].pending)

		assert.Equal(t, 2, sum.Sent)
		assert.Equal(t, 0, sum.Failed)
		assert.Equal(t, 1, sum.Skipped)
		require.Len(t, sum.Results, 3)
		assert.Equal(t, notify.KindReminder, sum.Results[2].Kind)
		assert.Equal(t, runner.ReasonNothingToSend, sum.Results[2].Reason)
		assert.NotEmpty(t, sum.RunID)
		assert.Empty(t, sum.ReadErrors)
	})

	t.Run("reminder goes to reminder subscribers only", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		store.articles = nil
		store.events = []*row[notify.Event]{
			{value: notify.Event{ID: 9, Title: "Practice", Date: today, Start: at(today, 16, 0), End: at(today, 17, 0), IsPractice: true}},
		}

		sender := &mockSender{}
		sender.On("Send", mock.Anything, subject(notify.ReminderSubject)).Return(nil).Once()
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(sender, nil)

		sum, err := newRunner(store, auth).Run(context.Background())
		require.NoError(t, err)
		sender.AssertExpectations(t)

		e := sender.Calls[0].Arguments.Get(1).(*mailer.Email)
		assert.Equal(t, []string{"b@example.com"}, e.BCC)
		assert.Contains(t, e.Text, "today we have our Practice from 4:00 PM to 5:00 PM.")
		assert.Equal(t, 1, sum.Sent)
		assert.Equal(t, 2, sum.Skipped)
	})

	t.Run("token exchange failure sends nothing and releases claims", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		sender := &mockSender{}
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(nil, errors.New("invalid_grant"))

		sum, err := newRunner(store, auth).Run(context.Background())
		require.ErrorIs(t, err, runner.ErrTokenExchange)
		require.ErrorIs(t, err, runner.ErrNoAccessToken)
		assert.Nil(t, sum)

		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		require.NotNil(t, store.releasedArticle)
		assert.Equal(t, int64(1), store.releasedArticle.ID)
		require.Len(t, store.releasedEvents, 1)
		assert.True(t, store.articles[0].pending)
		assert.True(t, store.events[0].pending)
	})

	t.Run("no refresh token stored", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		store.tokens = []string{"", ""}
		auth := &mockAuthorizer{}

		_, err := newRunner(store, auth).Run(context.Background())
		require.ErrorIs(t, err, runner.ErrNoRefreshToken)
		require.ErrorIs(t, err, runner.ErrNoAccessToken)
		auth.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)
	})

	t.Run("token read failure is fatal", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		store.tokensErr = errors.New("conn reset")

		_, err := newRunner(store, &mockAuthorizer{}).Run(context.Background())
		require.ErrorIs(t, err, runner.ErrNoAccessToken)
	})

	t.Run("calendar read failure collapses its notice", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		store.drainErr = errors.New("statement timeout")
		sender := &mockSender{}
		sender.On("Send", mock.Anything, subject("Spring Concert Program")).Return(nil).Once()
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(sender, nil)

		sum, err := newRunner(store, auth).Run(context.Background())
		require.NoError(t, err)
		sender.AssertExpectations(t)
		sender.AssertNumberOfCalls(t, "Send", 1)
		assert.Equal(t, 1, sum.Sent)
		require.Len(t, sum.ReadErrors, 1)
		assert.Contains(t, sum.ReadErrors[0].Error(), "drain calendar")
	})

	t.Run("recipient read failure skips and releases", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		store.subsErr[notify.Source{Table: notify.TableAdmin, Policy: notify.PolicyNewsletter}] = errors.New("relation does not exist")
		sender := &mockSender{}
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(sender, nil)

		sum, err := newRunner(store, auth).Run(context.Background())
		require.NoError(t, err)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)

		assert.Equal(t, runner.ReasonReadFailed, sum.Results[0].Reason)
		assert.Equal(t, runner.ReasonReadFailed, sum.Results[1].Reason)
		assert.True(t, store.articles[0].pending)
		assert.True(t, store.events[0].pending)
	})

	t.Run("send failure is reported", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		sender := &mockSender{}
		sender.On("Send", mock.Anything, subject("Spring Concert Program")).Return(errors.New("quota exceeded"))
		sender.On("Send", mock.Anything, subject(notify.CalendarSubject)).Return(nil)
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(sender, nil)

		sum, err := newRunner(store, auth).Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, sum.Sent)
		assert.Equal(t, 1, sum.Failed)
		assert.Equal(t, runner.StatusFailed, sum.Results[0].Status)
		assert.ErrorIs(t, sum.Results[0].Err, mailer.ErrSendFailed)
		assert.False(t, store.articles[0].pending)
	})

	t.Run("no recipients", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		store.subs = nil
		sender := &mockSender{}
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(sender, nil)

		sum, err := newRunner(store, auth).Run(context.Background())
		require.NoError(t, err)
		sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
		assert.Equal(t, runner.ReasonNoRecipients, sum.Results[0].Reason)
		assert.Equal(t, 3, sum.Skipped)
	})
}

func TestRunner_Lock(t *testing.T) {
	t.Parallel()

	t.Run("held elsewhere", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		auth := &mockAuthorizer{}
		r := newRunner(store, auth, runner.WithLock(&fakeLocker{err: redis.ErrLockHeld}, "emaild:run", time.Minute))

		_, err := r.Run(context.Background())
		require.ErrorIs(t, err, runner.ErrRunLocked)
		assert.Zero(t, store.calls)
		auth.AssertNotCalled(t, "Authorize", mock.Anything, mock.Anything)

		require.NoError(t, r.Handle(context.Background()))
	})

	t.Run("lock backend down", func(t *testing.T) {
		t.Parallel()

		r := newRunner(newStore(), &mockAuthorizer{},
			runner.WithLock(&fakeLocker{err: errors.Join(redis.ErrLockFailed, errors.New("dial tcp"))}, "emaild:run", time.Minute))
		_, err := r.Run(context.Background())
		require.ErrorIs(t, err, runner.ErrLock)
	})

	t.Run("released after the run", func(t *testing.T) {
		t.Parallel()

		store := newStore()
		store.articles, store.events = nil, nil
		auth := &mockAuthorizer{}
		auth.On("Authorize", mock.Anything, "1//stored").Return(&mockSender{}, nil)
		locker := &fakeLocker{}

		_, err := newRunner(store, auth, runner.WithLock(locker, "emaild:run", time.Minute)).Run(context.Background())
		require.NoError(t, err)
		assert.True(t, locker.unlocked)
	})
}

func TestRunner_LogsRunID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelInfo, runner.RunIDExtractor())

	store := newStore()
	store.articles, store.events = nil, nil
	auth := &mockAuthorizer{}
	auth.On("Authorize", mock.Anything, "1//stored").Return(&mockSender{}, nil)

	sum, err := newRunner(store, auth, runner.WithLogger(log)).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"run_id":"`+sum.RunID+`"`)
	assert.Contains(t, buf.String(), `"msg":"run completed"`)
}

func TestRunner_Task(t *testing.T) {
	t.Parallel()

	r := runner.New(newStore(), &mockAuthorizer{}, runner.WithSchedule("0 7 * * *"))
	assert.Equal(t, "emaild", r.Name())
	assert.Equal(t, "0 7 * * *", r.Schedule())
}

func TestRunID(t *testing.T) {
	t.Parallel()

	_, ok := runner.RunID(context.Background())
	assert.False(t, ok)

	ctx := runner.WithRunID(context.Background(), "abc")
	id, ok := runner.RunID(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", id)

	attr, ok := runner.RunIDExtractor()(ctx)
	require.True(t, ok)
	assert.Equal(t, "run_id", attr.Key)
}
