package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can branch without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindDuplicateResource
	KindNotFound
	KindInsufficientStock
	KindInvalidArgument
	KindConflict
	KindDataIntegrity
)

func (k Kind) String() string {
	switch k {
	case KindDuplicateResource:
		return "DUPLICATE_RESOURCE"
	case KindNotFound:
		return "NOT_FOUND"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindInvalidArgument:
		return "INVALID_ARGUMENT"
	case KindConflict:
		return "CONFLICT"
	case KindDataIntegrity:
		return "DATA_INTEGRITY"
	default:
		return "UNKNOWN"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error // wrapped cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match two *Error values by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindUnknown for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
