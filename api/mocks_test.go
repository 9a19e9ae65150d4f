package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GHIG-Portal/webinar-registration/access"
	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/GHIG-Portal/webinar-registration/roles"
	"github.com/International-Combat-Archery-Alliance/auth"
	"github.com/International-Combat-Archery-Alliance/email"
)

var noopLogger = slog.New(slog.DiscardHandler)

const (
	testClientID    = "test-client-id"
	testFromAddress = "noreply@webinar.example.com"
)

type mockAuthToken struct {
	email string
}

func (m *mockAuthToken) ExpiresAt() time.Time  { return time.Now().Add(time.Hour) }
func (m *mockAuthToken) ProfilePicURL() string { return "" }
func (m *mockAuthToken) IsAdmin() bool         { return false }
func (m *mockAuthToken) Roles() []auth.Role    { return nil }
func (m *mockAuthToken) UserEmail() string     { return m.email }

// mockAuthValidator treats the token itself as the signed-in email, and
// rejects anything that does not look like one.
type mockAuthValidator struct {
	ValidateFunc func(ctx context.Context, token string, clientID string) (auth.AuthToken, error)
}

func (m *mockAuthValidator) Validate(ctx context.Context, token string, clientID string) (auth.AuthToken, error) {
	if m.ValidateFunc != nil {
		return m.ValidateFunc(ctx, token, clientID)
	}
	if !strings.Contains(token, "@") {
		return nil, errors.New("invalid token")
	}
	return &mockAuthToken{email: token}, nil
}

type mockEmailSender struct {
	mu   sync.Mutex
	sent []email.Email

	SendEmailFunc func(ctx context.Context, e email.Email) error
}

func (m *mockEmailSender) SendEmail(ctx context.Context, e email.Email) error {
	if m.SendEmailFunc != nil {
		return m.SendEmailFunc(ctx, e)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return nil
}

func (m *mockEmailSender) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type mockGateway struct {
	InitiateCheckoutFunc func(ctx context.Context, request registration.CheckoutRequest) (registration.CheckoutSession, error)
	VerifyPaymentFunc    func(ctx context.Context, reference string) (registration.PaymentConfirmation, error)
	ConfirmWebhookFunc   func(ctx context.Context, payload []byte, signature string) (registration.PaymentConfirmation, error)
}

func (m *mockGateway) InitiateCheckout(ctx context.Context, request registration.CheckoutRequest) (registration.CheckoutSession, error) {
	if m.InitiateCheckoutFunc != nil {
		return m.InitiateCheckoutFunc(ctx, request)
	}
	return registration.CheckoutSession{
		Reference:        request.Reference,
		AuthorizationURL: "https://checkout.paystack.com/" + request.Reference,
		AccessCode:       "access-" + request.Reference,
		Email:            request.Email,
		Amount:           request.Amount,
	}, nil
}

func (m *mockGateway) VerifyPayment(ctx context.Context, reference string) (registration.PaymentConfirmation, error) {
	return m.VerifyPaymentFunc(ctx, reference)
}

func (m *mockGateway) ConfirmWebhook(ctx context.Context, payload []byte, signature string) (registration.PaymentConfirmation, error) {
	return m.ConfirmWebhookFunc(ctx, payload, signature)
}

var _ DB = &mockDB{}

// mockDB keeps everything in memory. The Func fields override single calls.
type mockDB struct {
	mu            sync.Mutex
	registrations []registration.Registration
	intents       map[string]registration.RegistrationIntent
	userRoles     map[string]string

	CreateRegistrationFunc  func(ctx context.Context, reg registration.Registration) error
	GetAllRegistrationsFunc func(ctx context.Context) ([]registration.Registration, error)
	GetUserRoleFunc         func(ctx context.Context, email string) (roles.UserRole, error)
}

func newMockDB() *mockDB {
	return &mockDB{
		intents:   map[string]registration.RegistrationIntent{},
		userRoles: map[string]string{},
	}
}

func (m *mockDB) CreateRegistration(ctx context.Context, reg registration.Registration) error {
	if m.CreateRegistrationFunc != nil {
		return m.CreateRegistrationFunc(ctx, reg)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.registrations {
		if reg.PaymentReference != "" && existing.PaymentReference == reg.PaymentReference {
			return registration.NewRegistrationAlreadyExistsError("Registration already exists", nil)
		}
	}
	m.registrations = append(m.registrations, reg)
	return nil
}

func (m *mockDB) GetRegistrationByPaymentReference(ctx context.Context, reference string) (registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, reg := range m.registrations {
		if reg.PaymentReference == reference {
			return reg, nil
		}
	}
	return registration.Registration{}, registration.NewRegistrationDoesNotExistsError("Registration not found", nil)
}

func (m *mockDB) GetRegistrationsByEmail(ctx context.Context, email string) ([]registration.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found []registration.Registration
	for _, reg := range m.registrations {
		if strings.EqualFold(reg.Email, email) {
			found = append(found, reg)
		}
	}
	return found, nil
}

func (m *mockDB) GetAllRegistrations(ctx context.Context) ([]registration.Registration, error) {
	if m.GetAllRegistrationsFunc != nil {
		return m.GetAllRegistrationsFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]registration.Registration{}, m.registrations...), nil
}

func (m *mockDB) ListRegistrations(ctx context.Context, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error) {
	all, err := m.GetAllRegistrations(ctx)
	if err != nil {
		return registration.GetAllRegistrationsResponse{}, err
	}
	if int(limit) < len(all) {
		return registration.GetAllRegistrationsResponse{Data: all[:limit], HasNextPage: true}, nil
	}
	return registration.GetAllRegistrationsResponse{Data: all}, nil
}

func (m *mockDB) CreateRegistrationIntent(ctx context.Context, intent registration.RegistrationIntent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intents[intent.Reference] = intent
	return nil
}

func (m *mockDB) GetRegistrationIntent(ctx context.Context, reference string) (registration.RegistrationIntent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	intent, ok := m.intents[reference]
	if !ok {
		return registration.RegistrationIntent{}, registration.NewRegistrationDoesNotExistsError("Registration intent not found", nil)
	}
	return intent, nil
}

func (m *mockDB) DeleteRegistrationIntent(ctx context.Context, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.intents, reference)
	return nil
}

func (m *mockDB) GetUserRole(ctx context.Context, email string) (roles.UserRole, error) {
	if m.GetUserRoleFunc != nil {
		return m.GetUserRoleFunc(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	role, ok := m.userRoles[roles.NormalizeEmail(email)]
	if !ok {
		return roles.UserRole{}, roles.NewUserDoesNotExistError(email)
	}
	return roles.UserRole{Email: roles.NormalizeEmail(email), Role: role}, nil
}

func (m *mockDB) PutUserRole(ctx context.Context, role roles.UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userRoles[roles.NormalizeEmail(role.Email)] = role.Role
	return nil
}

func (m *mockDB) registrationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.registrations)
}

func (m *mockDB) intentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intents)
}

type testAPI struct {
	*API
	db      *mockDB
	gateway *mockGateway
	emails  *mockEmailSender
}

func newTestAPI(t *testing.T, env Environment) testAPI {
	t.Helper()

	db := newMockDB()
	gateway := &mockGateway{}
	emails := &mockEmailSender{}

	workflow := registration.NewWorkflow(db, db, gateway, emails, testFromAddress, nil, noopLogger)
	api := NewAPI(db, workflow, &mockAuthValidator{}, access.NewVerifier(db, noopLogger), emails, noopLogger, Config{
		Env:               env,
		GoogleClientID:    testClientID,
		PaystackPublicKey: "pk_test_public",
		EmailFromAddress:  testFromAddress,
		CookieDomain:      "webinar.example.com",
		AllowedOrigin:     "https://webinar.example.com",
	})

	return testAPI{API: api, db: db, gateway: gateway, emails: emails}
}

// serve runs req through the full middleware chain.
func (ta testAPI) serve(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	handler, err := ta.Handler()
	if err != nil {
		t.Fatalf("failed to build handler: %s", err)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func jsonRequest(method string, target string, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(req *http.Request, email string) *http.Request {
	req.AddCookie(&http.Cookie{Name: googleAuthJWTCookieKey, Value: email})
	return req
}
