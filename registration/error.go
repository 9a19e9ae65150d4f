package registration

import "fmt"

type ErrorReason string

const (
	REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL ErrorReason = "FAILED_TO_TRANSLATE_TO_DB_MODEL"
	REASON_FAILED_TO_WRITE                 ErrorReason = "FAILED_TO_WRITE"
	REASON_REGISTRATION_DOES_NOT_EXIST     ErrorReason = "REGISTRATION_DOES_NOT_EXIST"
	REASON_REGISTRATION_ALREADY_EXISTS     ErrorReason = "REGISTRATION_ALREADY_EXISTS"
	REASON_FAILED_TO_FETCH                 ErrorReason = "FAILED_TO_FETCH"
	REASON_INVALID_CURSOR                  ErrorReason = "INVALID_CURSOR"
	REASON_TIMEOUT                         ErrorReason = "TIMEOUT"
	REASON_MISSING_FIELD                   ErrorReason = "MISSING_FIELD"
	REASON_INVALID_FIELD                   ErrorReason = "INVALID_FIELD"
	REASON_FAILED_TO_INITIATE_PAYMENT      ErrorReason = "FAILED_TO_INITIATE_PAYMENT"
	REASON_PAYMENT_NOT_CONFIRMED           ErrorReason = "PAYMENT_NOT_CONFIRMED"
	REASON_FAILED_TO_SEND_EMAIL            ErrorReason = "FAILED_TO_SEND_EMAIL"
	REASON_SIGN_IN_REQUIRED                ErrorReason = "SIGN_IN_REQUIRED"
	REASON_INVALID_STATE                   ErrorReason = "INVALID_STATE"
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

func newRegistrationError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewFailedToWriteError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_WRITE, message, cause)
}

func NewFailedToTranslateToDBModelError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_TRANSLATE_TO_DB_MODEL, message, cause)
}

func NewRegistrationAlreadyExistsError(message string, cause error) *Error {
	return newRegistrationError(REASON_REGISTRATION_ALREADY_EXISTS, message, cause)
}

func NewRegistrationDoesNotExistsError(message string, cause error) *Error {
	return newRegistrationError(REASON_REGISTRATION_DOES_NOT_EXIST, message, cause)
}

func NewFailedToFetchError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_FETCH, message, cause)
}

func NewInvalidCursorError(message string, cause error) *Error {
	return newRegistrationError(REASON_INVALID_CURSOR, message, cause)
}

func NewTimeoutError(message string) *Error {
	return newRegistrationError(REASON_TIMEOUT, message, nil)
}

// NewMissingFieldError carries the user-facing prompt for the first empty field.
func NewMissingFieldError(field string, prompt string) *Error {
	return newRegistrationError(REASON_MISSING_FIELD, prompt, &FieldError{Field: field})
}

func NewInvalidFieldError(field string, message string) *Error {
	return newRegistrationError(REASON_INVALID_FIELD, message, &FieldError{Field: field})
}

func NewFailedToInitiatePaymentError(message string, cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_INITIATE_PAYMENT, message, cause)
}

func NewPaymentNotConfirmedError(message string, cause error) *Error {
	return newRegistrationError(REASON_PAYMENT_NOT_CONFIRMED, message, cause)
}

func NewFailedToSendEmailError(cause error) *Error {
	return newRegistrationError(REASON_FAILED_TO_SEND_EMAIL, cause.Error(), cause)
}

func NewSignInRequiredError() *Error {
	return newRegistrationError(REASON_SIGN_IN_REQUIRED, "Please sign in or create an account to register", nil)
}

func NewInvalidStateError(state State, action string) *Error {
	return newRegistrationError(REASON_INVALID_STATE, fmt.Sprintf("Cannot %s while in state %s", action, state), nil)
}

// FieldError names the form field a validation error refers to.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q", e.Field)
}
