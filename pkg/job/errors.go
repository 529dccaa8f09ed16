package job

import "errors"

// Job errors.
var (
	// ErrInvalidSchedule is returned when a task's cron expression cannot be parsed.
	ErrInvalidSchedule = errors.New("job: invalid cron schedule")

	// ErrNoTasks is returned when a scheduler is created without tasks.
	ErrNoTasks = errors.New("job: no scheduled tasks")

	// ErrAlreadyStarted is returned when attempting to start a scheduler
	// that is already running.
	ErrAlreadyStarted = errors.New("job: already started")

	// ErrNotStarted is returned when attempting to stop a scheduler
	// that is not running.
	ErrNotStarted = errors.New("job: not started")

	// ErrHealthcheckFailed is returned when the scheduler health check fails.
	ErrHealthcheckFailed = errors.New("job: healthcheck failed")
)
