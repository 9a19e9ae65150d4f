package registration

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
)

const intentTTL = 30 * time.Minute

type IntentRepository interface {
	CreateRegistrationIntent(ctx context.Context, intent RegistrationIntent) error
	GetRegistrationIntent(ctx context.Context, reference string) (RegistrationIntent, error)
	DeleteRegistrationIntent(ctx context.Context, reference string) error
}

// RegistrationIntent is a validated form waiting on the payment gateway.
type RegistrationIntent struct {
	Version   int
	Reference string
	Form      Form
	Amount    *money.Money
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (i RegistrationIntent) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}
