package registration

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	STATUS_PAID = "paid"
	STATUS_FREE = "free"
)

type Repository interface {
	// CreateRegistration fails with REASON_REGISTRATION_ALREADY_EXISTS when a
	// registration with the same payment reference was already written.
	CreateRegistration(ctx context.Context, registration Registration) error
	GetRegistrationByPaymentReference(ctx context.Context, reference string) (Registration, error)
	GetRegistrationsByEmail(ctx context.Context, email string) ([]Registration, error)
	GetAllRegistrations(ctx context.Context) ([]Registration, error)
	ListRegistrations(ctx context.Context, limit int32, cursor *string) (GetAllRegistrationsResponse, error)
}

type GetAllRegistrationsResponse struct {
	Data        []Registration
	Cursor      *string
	HasNextPage bool
}

type Registration struct {
	ID               uuid.UUID
	Surname          string
	OtherNames       string
	Email            string
	Phone            string
	PriceOption      PriceOption
	Role             ParticipationRole
	PinCode          string
	PaymentReference string
	CreatedAt        time.Time
}

func newRegistration(form Form, pinCode string, paymentReference string, createdAt time.Time) Registration {
	form = form.normalized()

	return Registration{
		ID:               uuid.New(),
		Surname:          form.Surname,
		OtherNames:       form.OtherNames,
		Email:            form.Email,
		Phone:            form.Phone,
		PriceOption:      form.PriceOption,
		Role:             form.Role,
		PinCode:          pinCode,
		PaymentReference: paymentReference,
		CreatedAt:        createdAt,
	}
}

func (r Registration) Paid() bool {
	return r.PaymentReference != ""
}

func (r Registration) Status() string {
	if r.Paid() {
		return STATUS_PAID
	}
	return STATUS_FREE
}

func (r Registration) FullName() string {
	return strings.TrimSpace(r.Surname + " " + r.OtherNames)
}

// Amount is the whole-cedi amount parsed from the stored price option.
func (r Registration) Amount() int64 {
	return LeadingAmount(string(r.PriceOption))
}

func (r Registration) Form() Form {
	return Form{
		Surname:     r.Surname,
		OtherNames:  r.OtherNames,
		Email:       r.Email,
		Phone:       r.Phone,
		PriceOption: r.PriceOption,
		Role:        r.Role,
	}
}
