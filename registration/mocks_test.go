package registration

import (
	"context"
	"log/slog"
	"sync"

	"github.com/International-Combat-Archery-Alliance/email"
)

var noopLogger = slog.New(slog.DiscardHandler)

var _ Repository = &mockRegistrationRepository{}

// mockRegistrationRepository keeps registrations in memory unless a Func
// field overrides the call.
type mockRegistrationRepository struct {
	mu            sync.Mutex
	registrations []Registration

	CreateRegistrationFunc func(ctx context.Context, registration Registration) error
}

func (m *mockRegistrationRepository) CreateRegistration(ctx context.Context, registration Registration) error {
	if m.CreateRegistrationFunc != nil {
		return m.CreateRegistrationFunc(ctx, registration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.registrations {
		if r.PaymentReference != "" && r.PaymentReference == registration.PaymentReference {
			return NewRegistrationAlreadyExistsError("Registration already exists", nil)
		}
	}
	m.registrations = append(m.registrations, registration)
	return nil
}

func (m *mockRegistrationRepository) GetRegistrationByPaymentReference(ctx context.Context, reference string) (Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.registrations {
		if r.PaymentReference == reference {
			return r, nil
		}
	}
	return Registration{}, NewRegistrationDoesNotExistsError("Registration not found", nil)
}

func (m *mockRegistrationRepository) GetRegistrationsByEmail(ctx context.Context, email string) ([]Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []Registration
	for _, r := range m.registrations {
		if r.Email == email {
			found = append(found, r)
		}
	}
	return found, nil
}

func (m *mockRegistrationRepository) GetAllRegistrations(ctx context.Context) ([]Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]Registration(nil), m.registrations...), nil
}

func (m *mockRegistrationRepository) ListRegistrations(ctx context.Context, limit int32, cursor *string) (GetAllRegistrationsResponse, error) {
	all, err := m.GetAllRegistrations(ctx)
	return GetAllRegistrationsResponse{Data: all}, err
}

func (m *mockRegistrationRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.registrations)
}

var _ IntentRepository = &mockIntentRepository{}

type mockIntentRepository struct {
	mu      sync.Mutex
	intents map[string]RegistrationIntent

	CreateRegistrationIntentFunc func(ctx context.Context, intent RegistrationIntent) error
}

func (m *mockIntentRepository) CreateRegistrationIntent(ctx context.Context, intent RegistrationIntent) error {
	if m.CreateRegistrationIntentFunc != nil {
		return m.CreateRegistrationIntentFunc(ctx, intent)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.intents == nil {
		m.intents = map[string]RegistrationIntent{}
	}
	m.intents[intent.Reference] = intent
	return nil
}

func (m *mockIntentRepository) GetRegistrationIntent(ctx context.Context, reference string) (RegistrationIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	intent, ok := m.intents[reference]
	if !ok {
		return RegistrationIntent{}, NewRegistrationDoesNotExistsError("Registration intent not found", nil)
	}
	return intent, nil
}

func (m *mockIntentRepository) DeleteRegistrationIntent(ctx context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.intents, reference)
	return nil
}

func (m *mockIntentRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.intents)
}

var _ PaymentGateway = &mockPaymentGateway{}

type mockPaymentGateway struct {
	InitiateCheckoutFunc func(ctx context.Context, request CheckoutRequest) (CheckoutSession, error)
	VerifyPaymentFunc    func(ctx context.Context, reference string) (PaymentConfirmation, error)
	ConfirmWebhookFunc   func(ctx context.Context, payload []byte, signature string) (PaymentConfirmation, error)

	initiated []CheckoutRequest
}

func (m *mockPaymentGateway) InitiateCheckout(ctx context.Context, request CheckoutRequest) (CheckoutSession, error) {
	m.initiated = append(m.initiated, request)
	if m.InitiateCheckoutFunc != nil {
		return m.InitiateCheckoutFunc(ctx, request)
	}
	return CheckoutSession{
		Reference:        request.Reference,
		AuthorizationURL: "https://checkout.paystack.com/" + request.Reference,
		Email:            request.Email,
		Amount:           request.Amount,
	}, nil
}

func (m *mockPaymentGateway) VerifyPayment(ctx context.Context, reference string) (PaymentConfirmation, error) {
	return m.VerifyPaymentFunc(ctx, reference)
}

func (m *mockPaymentGateway) ConfirmWebhook(ctx context.Context, payload []byte, signature string) (PaymentConfirmation, error) {
	return m.ConfirmWebhookFunc(ctx, payload, signature)
}

type mockEmailSender struct {
	SendEmailFunc func(ctx context.Context, e email.Email) error

	sent []email.Email
}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, e)
	}
	m.sent = append(m.sent, e)
	return nil
}

type mockAlerter struct {
	incidents []IncompleteRegistration
}

func (m *mockAlerter) RegistrationIncomplete(ctx context.Context, incident IncompleteRegistration) error {
	m.incidents = append(m.incidents, incident)
	return nil
}
