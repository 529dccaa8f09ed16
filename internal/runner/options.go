package runner

import (
	"log/slog"
	"time"

	"github.com/olmmcc/emaild/pkg/mailer"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. Defaults to a noop logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLocation sets the zone "today" is computed in.
// Default: time.Local
func WithLocation(loc *time.Location) Option {
	return func(r *Runner) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithLock guards each run with an expiring lock named key.
func WithLock(l Locker, key string, ttl time.Duration) Option {
	return func(r *Runner) {
		r.locker = l
		r.lockKey = key
		r.lockTTL = ttl
	}
}

// WithMailerConfig sets the sender identity used for every notice.
func WithMailerConfig(cfg mailer.Config) Option {
	return func(r *Runner) {
		r.mailCfg = cfg
	}
}

// WithSchedule sets the cron expression returned by Schedule.
func WithSchedule(expr string) Option {
	return func(r *Runner) {
		r.schedule = expr
	}
}
