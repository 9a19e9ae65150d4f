package registration

import (
	"context"
	"time"
)

// Alerter tells an operator about payments that were captured but whose
// registration did not complete. Nothing is refunded or retried automatically.
type Alerter interface {
	RegistrationIncomplete(ctx context.Context, incident IncompleteRegistration) error
}

type IncompleteRegistration struct {
	Reference  string
	Email      string
	Stage      State
	Reason     string
	OccurredAt time.Time
}
