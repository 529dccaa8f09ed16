package health

import "errors"

var (
	ErrCheckFailed  = errors.New("health: check failed")
	ErrServerFailed = errors.New("health: server failed")
)
