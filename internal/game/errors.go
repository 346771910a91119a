package game

import "errors"

// Kind classifies service errors.
type Kind int

const (
	// KindInternal marks I/O failures and other unexpected errors.
	KindInternal Kind = iota
	// KindValidation marks client-caused errors; state is left untouched.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	default:
		return "internal"
	}
}

// Error is the service error type.
type Error struct {
	Kind    Kind
	Message string
	// Field names the offending input field, when there is one.
	Field string
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg += ": " + e.Field
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
	}
	return false
}

// Sentinels for errors.Is checks.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrInternal     = &Error{Kind: KindInternal}
	ErrMissingField = &Error{Kind: KindValidation, Message: msgMissingField}
	ErrInvalidData  = &Error{Kind: KindValidation, Message: msgInvalidData}
)

const (
	msgMissingField = "missing field"
	msgInvalidData  = "invalid data"
)

func validationError(message, field string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field}
}

func internalError(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// KindOf returns the kind of err; errors that are not *Error are internal.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindInternal
}
