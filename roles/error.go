package roles

import "fmt"

type ErrorReason string

const (
	REASON_USER_DOES_NOT_EXIST ErrorReason = "USER_DOES_NOT_EXIST"
	REASON_FAILED_TO_FETCH     ErrorReason = "FAILED_TO_FETCH"
	REASON_FAILED_TO_WRITE     ErrorReason = "FAILED_TO_WRITE"
	REASON_TIMEOUT             ErrorReason = "TIMEOUT"
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

func newRolesError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewUserDoesNotExistError(email string) *Error {
	return newRolesError(REASON_USER_DOES_NOT_EXIST, fmt.Sprintf("No user record for %s", email), nil)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newRolesError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newRolesError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewTimeoutError(message string) *Error {
	return newRolesError(REASON_TIMEOUT, message, nil)
}
