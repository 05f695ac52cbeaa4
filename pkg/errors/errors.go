package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the API boundary
type Kind uint8

const (
	KindUnknown Kind = iota
	// KindValidation malformed or missing input, detected before any store call
	KindValidation
	// KindConflict the operation would break a ledger invariant
	KindConflict
	// KindNotFound the target record is missing or not in the required state
	KindNotFound
	// KindStorage the store rejected or failed the operation
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error a kinded error carrying a human readable message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation returns a KindValidation error
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// Validationf formats a KindValidation error
func Validationf(format string, args ...interface{}) *Error {
	return Validation(fmt.Sprintf(format, args...))
}

// Conflict returns a KindConflict error
func Conflict(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NotFound returns a KindNotFound error
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Storage wraps a store failure
func Storage(msg string, err error) *Error {
	return &Error{Kind: KindStorage, Message: msg, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
// Errors that carry no kind are treated as storage failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStorage
}

// Message returns the human readable part of err
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Detail returns the underlying cause, if any
func Detail(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	return ""
}

// Is is errors.Is, re-exported so callers need a single import
func Is(err, target error) bool { return errors.Is(err, target) }

// As is errors.As
func As(err error, target interface{}) bool { return errors.As(err, target) }

// New is errors.New
func New(text string) error { return errors.New(text) }
