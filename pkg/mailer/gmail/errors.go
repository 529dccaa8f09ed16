package gmail

import "errors"

var (
	ErrBuildMessage  = errors.New("gmail: failed to build message")
	ErrRequestFailed = errors.New("gmail: send request returned non-OK status")
)
