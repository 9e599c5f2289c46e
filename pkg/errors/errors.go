package errors

import (
	"errors"
	"fmt"
)

// Kind buckets an error by how the caller recovers from it. Validation
// failures are local and block progression with no retry; transport and
// application failures abandon the operation and leave the user to retry
// by re-triggering the action.
type Kind string

const (
	KindValidation  Kind = "validation"
	KindTransport   Kind = "transport"
	KindApplication Kind = "application"
)

// Error is a typed domain error carrying a stable code.
type Error struct {
	Code    string `json:"code"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, kind Kind, message string) *Error {
	return &Error{Code: code, Kind: kind, Message: message, Err: err}
}

// Predefined errors for the client workflows.
var (
	ErrMissingFields        = New("MISSING_FIELDS", KindValidation, "please fill all fields")
	ErrInvalidDate          = New("INVALID_DATE", KindValidation, "invalid attendance date")
	ErrUnmarkedAttendance   = New("UNMARKED_ATTENDANCE", KindValidation, "please fill the attendance")
	ErrInvalidAmount        = New("INVALID_AMOUNT", KindValidation, "enter a valid amount")
	ErrExceedsPending       = New("EXCEEDS_PENDING", KindValidation, "amount cannot exceed pending amount")
	ErrMissingTransactionID = New("MISSING_TRANSACTION_ID", KindValidation, "transaction id is required")
	ErrSubmissionPending    = New("SUBMISSION_PENDING", KindValidation, "wait for pending approvals")
	ErrValidation           = New("VALIDATION_ERROR", KindValidation, "validation failed")
	ErrNotAuthenticated     = New("NOT_AUTHENTICATED", KindValidation, "no authenticated user")
	ErrScopeMissing         = New("SCOPE_MISSING", KindValidation, "no academic scope selected")
	ErrTransport            = New("TRANSPORT_ERROR", KindTransport, "request failed")
	ErrApplication          = New("APPLICATION_ERROR", KindApplication, "server reported an error")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrTransport.Code, ErrTransport.Kind, ErrTransport.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Retryable reports whether the user may recover by re-triggering the
// action. Validation errors require corrected input instead.
func Retryable(err error) bool {
	e := FromError(err)
	if e == nil {
		return false
	}
	return e.Kind == KindTransport || e.Kind == KindApplication
}

// IsKind reports whether err belongs to the given kind.
func IsKind(err error, kind Kind) bool {
	e := FromError(err)
	if e == nil {
		return false
	}
	return e.Kind == kind
}

// Is lets predefined errors match wrapped instances by code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e != nil && e.Code == t.Code
}
