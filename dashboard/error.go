package dashboard

import "fmt"

type ErrorReason string

const (
	REASON_NOT_AUTHORIZED  ErrorReason = "NOT_AUTHORIZED"
	REASON_FAILED_TO_FETCH ErrorReason = "FAILED_TO_FETCH"
	REASON_FAILED_TO_WRITE ErrorReason = "FAILED_TO_WRITE"
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

func newDashboardError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewNotAuthorizedError(view ViewKind) *Error {
	return newDashboardError(REASON_NOT_AUTHORIZED, fmt.Sprintf("Dashboard is not available from the %s view", view), nil)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newDashboardError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newDashboardError(REASON_FAILED_TO_WRITE, message, cause)
}
