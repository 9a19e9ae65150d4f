package registration

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
)

const (
	METADATA_SURNAME     = "surname"
	METADATA_OTHER_NAMES = "other_names"
	METADATA_PHONE       = "phone"
	METADATA_ROLE        = "role"
)

type PaymentGateway interface {
	InitiateCheckout(ctx context.Context, request CheckoutRequest) (CheckoutSession, error)
	// VerifyPayment only returns a confirmation for a completed payment.
	VerifyPayment(ctx context.Context, reference string) (PaymentConfirmation, error)
	ConfirmWebhook(ctx context.Context, payload []byte, signature string) (PaymentConfirmation, error)
}

type CheckoutRequest struct {
	Reference string
	Email     string
	Amount    *money.Money
	Metadata  map[string]string
}

type CheckoutSession struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
	Email            string
	Amount           *money.Money
}

type PaymentConfirmation struct {
	Reference string
	Email     string
	Amount    *money.Money
	PaidAt    time.Time
}

func newCheckoutRequest(reference string, form Form, amount *money.Money) CheckoutRequest {
	return CheckoutRequest{
		Reference: reference,
		Email:     form.Email,
		Amount:    amount,
		Metadata: map[string]string{
			METADATA_SURNAME:     form.Surname,
			METADATA_OTHER_NAMES: form.OtherNames,
			METADATA_PHONE:       form.Phone,
			METADATA_ROLE:        string(form.Role),
		},
	}
}
