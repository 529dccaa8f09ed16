// Package store reads and flips the mailing rows in Postgres.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olmmcc/emaild/internal/notify"
	"github.com/olmmcc/emaild/pkg/db"
)

// DB is satisfied by *pgxpool.Pool and pgxmock pools.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Option configures a Store.
type Option func(*Store)

// WithLocation sets the zone calendar clock times are interpreted in.
// Default: time.Local
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// Store runs the job's queries.
type Store struct {
	db  DB
	loc *time.Location
}

// New creates a Store on top of db.
func New(db DB, opts ...Option) *Store {
	s := &Store{db: db, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

const (
	queryRefreshTokens = `SELECT refresh_token FROM admin ORDER BY id`

	queryPendingArticles = `SELECT id, title, expiry_date FROM articles WHERE send_email = true ORDER BY id`
	claimArticle         = `UPDATE articles SET send_email = false WHERE id = $1 AND send_email = true`
	releaseArticle       = `UPDATE articles SET send_email = true WHERE id = $1`

	eventColumns = `id, title, date, start_time::text AS start_time, end_time::text AS end_time, is_practice, notes`

	drainEvents   = `UPDATE calendar SET send_email = false WHERE send_email = true RETURNING ` + eventColumns
	releaseEvents = `UPDATE calendar SET send_email = true WHERE id = ANY($1)`
	queryEventsOn = `SELECT ` + eventColumns + ` FROM calendar WHERE date = $1 ORDER BY id`

	querySubscribers = `SELECT email FROM %s WHERE subscription_policy = $1 ORDER BY id`
)

// RefreshTokens returns every stored refresh token in table order, empty
// values included.
func (s *Store) RefreshTokens(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, queryRefreshTokens)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	tokens, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Join(ErrSchemaMismatch, err)
	}
	return tokens, nil
}

type articleRow struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	ExpiryDate time.Time `db:"expiry_date"`
}

// ClaimArticle picks the pending article to announce and clears its flag.
// It returns nil when nothing is eligible or a concurrent run claimed the
// row first.
func (s *Store) ClaimArticle(ctx context.Context, now time.Time) (*notify.Article, error) {
	rows, err := s.db.Query(ctx, queryPendingArticles)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	pending, err := pgx.CollectRows(rows, pgx.RowToStructByName[articleRow])
	if err != nil {
		return nil, errors.Join(ErrSchemaMismatch, err)
	}

	articles := make([]notify.Article, 0, len(pending))
	for _, r := range pending {
		d := r.ExpiryDate
		articles = append(articles, notify.Article{
			ID:     r.ID,
			Title:  r.Title,
			Expiry: time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC),
		})
	}

	a, ok := notify.SelectArticle(articles, now)
	if !ok {
		return nil, nil
	}

	tag, err := s.db.Exec(ctx, claimArticle, a.ID)
	if err != nil {
		return nil, errors.Join(ErrUpdateFailed, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil
	}
	return &a, nil
}

type eventRow struct {
	ID         int64     `db:"id"`
	Title      string    `db:"title"`
	Date       time.Time `db:"date"`
	StartTime  string    `db:"start_time"`
	EndTime    string    `db:"end_time"`
	IsPractice bool      `db:"is_practice"`
	Notes      string    `db:"notes"`
}

// DrainEvents clears the flag on every pending calendar row in one statement
// and returns those rows ordered by id. Rows are decoded inside the
// transaction, so a row that fails to decode leaves every flag set.
func (s *Store) DrainEvents(ctx context.Context) ([]notify.Event, error) {
	var events []notify.Event
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, drainEvents)
		if err != nil {
			return errors.Join(ErrUpdateFailed, err)
		}
		events, err = s.collectEvents(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	notify.SortEvents(events)
	return events, nil
}

// TodaysEvents returns the calendar rows dated day, whatever their flag.
func (s *Store) TodaysEvents(ctx context.Context, day time.Time) ([]notify.Event, error) {
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := s.db.Query(ctx, queryEventsOn, date)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return s.collectEvents(rows)
}

func (s *Store) collectEvents(rows pgx.Rows) ([]notify.Event, error) {
	raw, err := pgx.CollectRows(rows, pgx.RowToStructByName[eventRow])
	if err != nil {
		return nil, errors.Join(ErrSchemaMismatch, err)
	}

	events := make([]notify.Event, 0, len(raw))
	for _, r := range raw {
		start, err := s.clock(r.Date, r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("%w: calendar %d start_time: %w", ErrSchemaMismatch, r.ID, err)
		}
		end, err := s.clock(r.Date, r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("%w: calendar %d end_time: %w", ErrSchemaMismatch, r.ID, err)
		}
		events = append(events, notify.Event{
			ID:         r.ID,
			Title:      r.Title,
			Date:       time.Date(r.Date.Year(), r.Date.Month(), r.Date.Day(), 0, 0, 0, 0, s.loc),
			Start:      start,
			End:        end,
			IsPractice: r.IsPractice,
			Notes:      r.Notes,
		})
	}
	return events, nil
}

const endOfDay = "24:00:00"

// clock combines a date column with a TIME column rendered as text.
// Postgres allows 24:00:00, which is midnight at the end of date.
func (s *Store) clock(date time.Time, value string) (time.Time, error) {
	if value == endOfDay {
		return time.Date(date.Year(), date.Month(), date.Day()+1, 0, 0, 0, 0, s.loc), nil
	}
	t, err := time.Parse("15:04:05.999999999", value)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, s.loc), nil
}

// Subscribers returns the email addresses in table whose subscription
// matches policy.
func (s *Store) Subscribers(ctx context.Context, table notify.Table, policy notify.SubscriptionPolicy) ([]string, error) {
	switch table {
	case notify.TableUsers, notify.TableAdmin:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, table)
	}

	query := fmt.Sprintf(querySubscribers, pgx.Identifier{string(table)}.Sanitize())
	rows, err := s.db.Query(ctx, query, string(policy))
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, errors.Join(ErrSchemaMismatch, err)
	}
	return emails, nil
}

// Release sets the flags of a claimed article and drained events back so
// that the next run picks them up again. Either may be empty.
func (s *Store) Release(ctx context.Context, article *notify.Article, events []notify.Event) error {
	if article == nil && len(events) == 0 {
		return nil
	}

	return db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if article != nil {
			if _, err := tx.Exec(ctx, releaseArticle, article.ID); err != nil {
				return errors.Join(ErrUpdateFailed, err)
			}
		}
		if len(events) > 0 {
			ids := make([]int64, 0, len(events))
			for _, e := range events {
				ids = append(ids, e.ID)
			}
			if _, err := tx.Exec(ctx, releaseEvents, ids); err != nil {
				return errors.Join(ErrUpdateFailed, err)
			}
		}
		return nil
	})
}
