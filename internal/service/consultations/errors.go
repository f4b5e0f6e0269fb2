package consultations

import (
	"errors"

	"consulta/backend/internal/store"
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// ConflictError reports an occupied slot or an already cancelled date.
type ConflictError struct {
	msg string
}

func (e *ConflictError) Error() string {
	return e.msg
}

func (e *ConflictError) Unwrap() error {
	return store.ErrConflict
}

func conflictError(msg string) error {
	return &ConflictError{msg: msg}
}

type NotFoundError struct {
	msg string
}

func (e *NotFoundError) Error() string {
	return e.msg
}

func (e *NotFoundError) Unwrap() error {
	return store.ErrNotFound
}

func notFoundError(msg string) error {
	return &NotFoundError{msg: msg}
}

// BusinessRuleError reports an operation attempted on the wrong kind of row.
type BusinessRuleError struct {
	msg string
}

func (e *BusinessRuleError) Error() string {
	return e.msg
}

func businessRuleError(msg string) error {
	return &BusinessRuleError{msg: msg}
}

type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindBusinessRule Kind = "business_rule"
	KindInternal     Kind = "internal"
)

func KindOf(err error) Kind {
	var (
		vErr *ValidationError
		cErr *ConflictError
		nErr *NotFoundError
		bErr *BusinessRuleError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &vErr):
		return KindValidation
	case errors.As(err, &cErr):
		return KindConflict
	case errors.As(err, &nErr):
		return KindNotFound
	case errors.As(err, &bErr):
		return KindBusinessRule
	case errors.Is(err, store.ErrConflict):
		return KindConflict
	case errors.Is(err, store.ErrNotFound):
		return KindNotFound
	}
	return KindInternal
}
