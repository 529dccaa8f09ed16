package store

import "errors"

var (
	ErrUnknownTable   = errors.New("store: unknown subscriber table")
	ErrQueryFailed    = errors.New("store: query failed")
	ErrUpdateFailed   = errors.New("store: update failed")
	ErrSchemaMismatch = errors.New("store: row does not match schema")
)
