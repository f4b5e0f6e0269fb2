package store

import "errors"

var (
	ErrConflict      = errors.New("conflict")
	ErrNotFound      = errors.New("not found")
	ErrLeaseHeld     = errors.New("lease held by another owner")
	ErrInvalidFilter = errors.New("invalid filter")
)
