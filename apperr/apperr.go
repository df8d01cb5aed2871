// Package apperr defines the error taxonomy shared by every action.
//
// Validation and domain-rule failures carry a message meant for the user.
// Anything else is funnelled through Handle and becomes an opaque Unexpected error.
package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindForbidden
	KindUnauthorized
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unexpected"
	}
}

// GenericMessage is the only text an unexpected failure ever shows.
const GenericMessage = "Something went wrong"

// ErrUnexpected is matched by errors.Is for every normalized unexpected error.
var ErrUnexpected = errors.New(GenericMessage)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return e.Kind == KindUnexpected && target == ErrUnexpected
}

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthorized(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, KindUnexpected for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == k
}

// Handle is the shared handler for errors leaving an action. Known errors pass
// through untouched, everything else is logged and replaced with an opaque one.
func Handle(err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindUnexpected {
		return appErr
	}
	log.Errorw("unexpected error", "error", err)
	return &Error{Kind: KindUnexpected, Message: GenericMessage}
}
