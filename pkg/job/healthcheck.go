package job

import (
	"context"
	"errors"
)

var (
	errSchedulerNil        = errors.New("scheduler is nil")
	errSchedulerNotStarted = errors.New("scheduler not started")
)

// Healthcheck returns a health check function for the scheduler.
// The check verifies that the scheduler is started.
func Healthcheck(s *Scheduler) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if s == nil {
			return errors.Join(ErrHealthcheckFailed, errSchedulerNil)
		}

		s.mu.Lock()
		started := s.started
		s.mu.Unlock()

		if !started {
			return errors.Join(ErrHealthcheckFailed, errSchedulerNotStarted)
		}
		return nil
	}
}
