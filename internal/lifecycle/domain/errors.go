package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a rejected lifecycle operation.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindUnknownStage       ErrorKind = "unknown_stage"
	KindForbidden          ErrorKind = "forbidden"
	KindSubjectOnHold      ErrorKind = "subject_on_hold"
	KindSubjectDeactivated ErrorKind = "subject_deactivated"
	KindNoChange           ErrorKind = "no_change"
	KindAlreadyCompleted   ErrorKind = "already_completed"
	KindInvalidInput       ErrorKind = "invalid_input"
	KindInvalidSchedule    ErrorKind = "invalid_schedule"
	KindConflict           ErrorKind = "conflict"
)

// Error is a typed, recoverable lifecycle failure with a human readable reason.
type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string {
	if e.Reason == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

// Is matches a sentinel of the same kind. Sentinels that carry a reason only
// match errors with that exact reason.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind && (other.Reason == "" || other.Reason == e.Reason)
}

var (
	// ErrSubjectNotFound indicates the requested lead or project does not exist.
	ErrSubjectNotFound = &Error{Kind: KindNotFound, Reason: "subject not found"}

	// ErrSubStageNotFound indicates the sub-stage id is not part of the catalog.
	ErrSubStageNotFound = &Error{Kind: KindNotFound, Reason: "sub-stage not found"}

	// ErrPaymentNotFound indicates the payment id is not in the ledger.
	ErrPaymentNotFound = &Error{Kind: KindNotFound, Reason: "payment not found"}

	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrUnknownStage       = &Error{Kind: KindUnknownStage}
	ErrForbidden          = &Error{Kind: KindForbidden}
	ErrSubjectOnHold      = &Error{Kind: KindSubjectOnHold}
	ErrSubjectDeactivated = &Error{Kind: KindSubjectDeactivated}
	ErrNoChange           = &Error{Kind: KindNoChange}
	ErrAlreadyCompleted   = &Error{Kind: KindAlreadyCompleted}
	ErrInvalidInput       = &Error{Kind: KindInvalidInput}
	ErrInvalidSchedule    = &Error{Kind: KindInvalidSchedule}

	// ErrConcurrentModification indicates the subject changed since it was loaded.
	ErrConcurrentModification = &Error{Kind: KindConflict, Reason: "subject was modified concurrently"}
)

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		Reason: fmt.Sprintf(format, args...),
	}
}

func unknownStage(subjectType SubjectType, key string) *Error {
	return newError(KindUnknownStage, "stage %q is not defined for %s", key, subjectType)
}

func forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

func invalidInput(format string, args ...any) *Error {
	return newError(KindInvalidInput, format, args...)
}

func invalidSchedule(format string, args ...any) *Error {
	return newError(KindInvalidSchedule, format, args...)
}

// KindOf returns the kind of a lifecycle error, or an empty kind for foreign errors.
func KindOf(err error) ErrorKind {
	var lifecycleErr *Error
	if errors.As(err, &lifecycleErr) {
		return lifecycleErr.Kind
	}
	return ""
}

// HTTPStatus maps an error kind onto the status code an HTTP boundary should use.
func HTTPStatus(kind ErrorKind) int {
	switch kind {
	case KindNotFound, KindUnknownStage:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindSubjectOnHold, KindSubjectDeactivated, KindNoChange, KindAlreadyCompleted, KindConflict:
		return http.StatusConflict
	case KindInvalidInput, KindInvalidSchedule:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
