package paystack

import "fmt"

type ErrorReason string

const (
	REASON_REQUEST_FAILED    ErrorReason = "REQUEST_FAILED"
	REASON_REQUEST_REJECTED  ErrorReason = "REQUEST_REJECTED"
	REASON_INVALID_SIGNATURE ErrorReason = "INVALID_SIGNATURE"
	REASON_INVALID_PAYLOAD   ErrorReason = "INVALID_PAYLOAD"
	REASON_PAYMENT_FAILED    ErrorReason = "PAYMENT_FAILED"
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

func newPaystackError(reason ErrorReason, message string, cause error) *Error {
	return &Error{
		Reason:  reason,
		Message: message,
		Cause:   cause,
	}
}

func NewRequestFailedError(message string, cause error) *Error {
	return newPaystackError(REASON_REQUEST_FAILED, message, cause)
}

func NewRequestRejectedError(message string) *Error {
	return newPaystackError(REASON_REQUEST_REJECTED, message, nil)
}

func NewInvalidSignatureError() *Error {
	return newPaystackError(REASON_INVALID_SIGNATURE, "Webhook signature does not match payload", nil)
}

func NewInvalidPayloadError(cause error) *Error {
	return newPaystackError(REASON_INVALID_PAYLOAD, "Failed to decode webhook payload", cause)
}

func NewPaymentFailedError(reference string, status string) *Error {
	return newPaystackError(REASON_PAYMENT_FAILED, fmt.Sprintf("Transaction %s has status %q", reference, status), nil)
}
