package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure so the transport layer can map it.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindForbidden          ErrorKind = "forbidden"
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindInvalidDate        ErrorKind = "invalid_date"
	KindLimitExceeded      ErrorKind = "limit_exceeded"
	KindDuplicateReview    ErrorKind = "duplicate_review"
	KindPaymentIncomplete  ErrorKind = "payment_incomplete"
	KindInvalidSession     ErrorKind = "invalid_session"
	KindIncompleteMetadata ErrorKind = "incomplete_metadata"
	KindConfiguration      ErrorKind = "configuration_error"
	KindConflict           ErrorKind = "conflict"
	KindInternal           ErrorKind = "internal"
)

// Error is a business-rule failure reported synchronously to the caller.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// KindOf returns the kind of the first domain error in err's chain,
// or KindInternal when there is none.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var de *Error
	return errors.As(err, &de) && de.Kind == kind
}

func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("No %s with the id of %s", entity, id)}
}

func NewForbiddenError(msg string) *Error {
	return &Error{Kind: KindForbidden, Message: msg}
}

// NewValidationError reports malformed or missing input.
func NewValidationError(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

func NewInvalidDateError(msg string) *Error {
	return &Error{Kind: KindInvalidDate, Message: msg}
}

func NewLimitExceededError(msg string) *Error {
	return &Error{Kind: KindLimitExceeded, Message: msg}
}

func NewDuplicateReviewError(msg string) *Error {
	return &Error{Kind: KindDuplicateReview, Message: msg}
}

func NewPaymentIncompleteError(msg string) *Error {
	return &Error{Kind: KindPaymentIncomplete, Message: msg}
}

// NewInvalidSessionError wraps a failed session lookup at the payment processor.
func NewInvalidSessionError(msg string, cause error) *Error {
	return &Error{Kind: KindInvalidSession, Message: msg, cause: cause}
}

func NewIncompleteMetadataError(msg string) *Error {
	return &Error{Kind: KindIncompleteMetadata, Message: msg}
}

func NewConfigurationError(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewInternalError wraps an unexpected collaborator failure.
func NewInternalError(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}
