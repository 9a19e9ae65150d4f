package api

import (
	"log/slog"
	"net/http"

	"github.com/GHIG-Portal/webinar-registration/access"
	"github.com/GHIG-Portal/webinar-registration/identity"
	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/GHIG-Portal/webinar-registration/roles"
	"github.com/International-Combat-Archery-Alliance/email"
)

type Environment int

const (
	LOCAL Environment = iota
	PROD
)

type DB interface {
	registration.Repository
	registration.IntentRepository
	roles.Repository
}

type Config struct {
	Env               Environment
	GoogleClientID    string
	PaystackPublicKey string
	EmailFromAddress  string
	CookieDomain      string
	AllowedOrigin     string
}

type API struct {
	db          DB
	workflow    *registration.Workflow
	verifier    identity.Verifier
	access      *access.Verifier
	emailSender email.Sender
	logger      *slog.Logger

	env               Environment
	googleClientID    string
	paystackPublicKey string
	fromAddress       string
	cookieDomain      string
	allowedOrigin     string
}

func NewAPI(db DB, workflow *registration.Workflow, verifier identity.Verifier, accessVerifier *access.Verifier, emailSender email.Sender, logger *slog.Logger, cfg Config) *API {
	return &API{
		db:                db,
		workflow:          workflow,
		verifier:          verifier,
		access:            accessVerifier,
		emailSender:       emailSender,
		logger:            logger,
		env:               cfg.Env,
		googleClientID:    cfg.GoogleClientID,
		paystackPublicKey: cfg.PaystackPublicKey,
		fromAddress:       cfg.EmailFromAddress,
		cookieDomain:      cfg.CookieDomain,
		allowedOrigin:     cfg.AllowedOrigin,
	}
}

func (a *API) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/contacts", a.PostContacts)
	mux.HandleFunc("POST /registrations/checkout", a.PostRegistrationCheckout)
	mux.HandleFunc("POST /registrations/free", a.PostFreeRegistration)
	mux.HandleFunc("POST /registrations/{reference}/confirm", a.PostConfirmRegistration)
	mux.HandleFunc("POST /registrations/{reference}/cancel", a.PostCancelRegistration)
	mux.HandleFunc("GET /registrations", a.GetRegistrations)
	mux.HandleFunc("POST /access", a.PostAccess)
	mux.HandleFunc("POST /login", a.PostGoogleLogin)
	mux.HandleFunc("POST /logout", a.PostLogout)
	mux.HandleFunc("GET /dashboard", a.GetDashboard)
	mux.HandleFunc("GET /dashboard/export", a.GetDashboardExport)

	return mux
}

// Handler wires every route behind the middleware chain. Middlewares listed
// later wrap the earlier ones, so the webhook runs before request validation.
func (a *API) Handler() (http.Handler, error) {
	swagger, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	swagger.Servers = nil

	return useMiddlewares(a.routes(),
		a.openapiValidateMiddleware(swagger),
		a.paystackWebhookMiddleware("/webhooks/paystack"),
		a.loggingMiddleware(),
		a.corsMiddleware(),
		a.requestContextMiddleware(),
		a.tracingMiddleware(),
	), nil
}
