// Package apperror defines the caller-facing failures of the inventory engine.
// Anything that is not an *Error is a storage or infrastructure failure and is
// surfaced to the caller unchanged.
package apperror

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindNotFound
	KindStateConflict
	KindInsufficientStock
	KindDuplicatePending
	KindForbidden
	// KindUnavailable marks a transient condition, such as a contended lock; the caller may retry.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindNotFound:
		return "NOT_FOUND"
	case KindStateConflict:
		return "STATE_CONFLICT"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindDuplicatePending:
		return "DUPLICATE_PENDING"
	case KindForbidden:
		return "FORBIDDEN"
	case KindUnavailable:
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}

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

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrStaleWrite is returned by repositories when a compare-and-set update found
// the row in a different state than expected.
var ErrStaleWrite = errors.New("stale write: row changed concurrently")

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	e := newf(kind, format, args...)
	e.Err = err
	return e
}

func Validation(format string, args ...any) *Error {
	return newf(KindValidation, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func StateConflict(format string, args ...any) *Error {
	return newf(KindStateConflict, format, args...)
}

func InsufficientStock(format string, args ...any) *Error {
	return newf(KindInsufficientStock, format, args...)
}

func DuplicatePending(format string, args ...any) *Error {
	return newf(KindDuplicatePending, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newf(KindForbidden, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
