package job

import (
	"context"
	"log/slog"
	"time"
)

// config holds scheduler configuration.
type config struct {
	logger    *slog.Logger
	location  *time.Location
	schedules []scheduleConfig
}

//nolint:betteralign // all fields contain pointers, no optimization possible
type scheduleConfig struct {
	handler  scheduledHandler
	name     string
	schedule string
}

type scheduledHandler func(context.Context) error

// Option configures the scheduler.
type Option func(*config)

// WithScheduledTask registers a periodic task using structural typing.
// The task must implement Name(), Schedule(), and Handle(ctx) methods.
// Schedule() should return a cron expression (5 fields: min hour day month weekday).
func WithScheduledTask[T interface {
	Name() string
	Schedule() string
	Handle(context.Context) error
}](task T) Option {
	return func(c *config) {
		c.schedules = append(c.schedules, scheduleConfig{
			name:     task.Name(),
			schedule: task.Schedule(),
			handler:  task.Handle,
		})
	}
}

// WithLogger sets the logger for task execution.
// If not set, a noop logger is used.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithLocation sets the zone schedules are evaluated in.
// Defaults to time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}
