package runner

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAccessToken aborts a run before anything is sent.
	ErrNoAccessToken  = errors.New("runner: no access token")
	ErrNoRefreshToken = fmt.Errorf("%w: no refresh token stored", ErrNoAccessToken)
	ErrTokenExchange  = fmt.Errorf("%w: refresh token exchange failed", ErrNoAccessToken)

	// ErrRunLocked is returned when another run holds the run lock.
	ErrRunLocked = errors.New("runner: another run is in progress")
	ErrLock      = errors.New("runner: run lock unavailable")
)
