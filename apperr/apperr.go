// Package apperr holds the domain error kinds shared by services and
// controllers. NotFound, Precondition and Validation are expected outcomes;
// anything that is not an *Error is treated as Unexpected.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unexpected Kind = iota
	NotFound
	Precondition
	Validation
	Conflict
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Precondition:
		return "precondition_violation"
	case Validation:
		return "validation_error"
	case Conflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func NewNotFound(entity string) *Error {
	return &Error{
		Kind:    NotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", entity),
	}
}

func NewPrecondition(code, format string, args ...interface{}) *Error {
	return &Error{Kind: Precondition, Code: code, Message: fmt.Sprintf(format, args...)}
}

func NewValidation(format string, args ...interface{}) *Error {
	return &Error{Kind: Validation, Code: "VALIDATION_ERROR", Message: fmt.Sprintf(format, args...)}
}

func NewConflict(entity string) *Error {
	return &Error{
		Kind:    Conflict,
		Code:    "CONCURRENT_UPDATE",
		Message: fmt.Sprintf("%s was modified by another request, please retry", entity),
	}
}

// KindOf reports the kind of err, Unexpected for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unexpected
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
