package access

import "fmt"

type ErrorReason string

const (
	REASON_MISSING_FIELD       ErrorReason = "MISSING_FIELD"
	REASON_INVALID_CREDENTIALS ErrorReason = "INVALID_CREDENTIALS"
	REASON_LOCKED_OUT          ErrorReason = "LOCKED_OUT"
	REASON_FAILED_TO_FETCH     ErrorReason = "FAILED_TO_FETCH"
)

type Error struct {
	Reason  ErrorReason
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s. Cause: %s", e.Reason, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newAccessError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewMissingFieldError(message string) *Error {
	return newAccessError(REASON_MISSING_FIELD, message, nil)
}

func NewInvalidCredentialsError() *Error {
	return newAccessError(REASON_INVALID_CREDENTIALS, "Email or PIN is incorrect", nil)
}

func NewLockedOutError() *Error {
	return newAccessError(REASON_LOCKED_OUT, "Too many failed attempts, try again later", nil)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newAccessError(REASON_FAILED_TO_FETCH, message, cause)
}
