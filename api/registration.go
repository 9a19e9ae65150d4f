package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/GHIG-Portal/webinar-registration/dashboard"
	"github.com/GHIG-Portal/webinar-registration/ptr"
	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/GHIG-Portal/webinar-registration/slices"
	"github.com/oapi-codegen/runtime/types"
)

type RegistrationForm struct {
	Surname     string `json:"surname"`
	OtherNames  string `json:"otherNames"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	PriceOption string `json:"priceOption"`
	Role        string `json:"role"`
}

func (f RegistrationForm) toForm() registration.Form {
	return registration.Form{
		Surname:     f.Surname,
		OtherNames:  f.OtherNames,
		Email:       f.Email,
		Phone:       f.Phone,
		PriceOption: registration.PriceOption(f.PriceOption),
		Role:        registration.ParticipationRole(f.Role),
	}
}

type CheckoutResponse struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorizationUrl"`
	AccessCode       string `json:"accessCode"`
	PublicKey        string `json:"publicKey"`
	Email            string `json:"email"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
}

type Registration struct {
	ID               string     `json:"id"`
	Surname          string     `json:"surname"`
	OtherNames       string     `json:"otherNames"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	PriceOption      string     `json:"priceOption"`
	Role             string     `json:"role"`
	PinCode          string     `json:"pinCode"`
	PaymentReference string     `json:"paymentReference,omitempty"`
	Status           string     `json:"status"`
	Amount           int64      `json:"amount"`
	RegisteredOn     types.Date `json:"registeredOn"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func registrationToApiRegistration(reg registration.Registration) Registration {
	return Registration{
		ID:               reg.ID.String(),
		Surname:          reg.Surname,
		OtherNames:       reg.OtherNames,
		Email:            reg.Email,
		Phone:            reg.Phone,
		PriceOption:      string(reg.PriceOption),
		Role:             string(reg.Role),
		PinCode:          reg.PinCode,
		PaymentReference: reg.PaymentReference,
		Status:           reg.Status(),
		Amount:           reg.Amount(),
		RegisteredOn:     types.Date{Time: reg.CreatedAt},
		CreatedAt:        reg.CreatedAt,
	}
}

type AttemptResponse struct {
	State        string        `json:"state"`
	Message      string        `json:"message,omitempty"`
	RedirectTo   string        `json:"redirectTo,omitempty"`
	Registration *Registration `json:"registration,omitempty"`
}

func attemptToApiAttempt(a *registration.Attempt) AttemptResponse {
	resp := AttemptResponse{
		State:      a.State.String(),
		Message:    a.Message,
		RedirectTo: a.RedirectTo,
	}
	if a.Registration != nil {
		resp.Registration = ptr.To(registrationToApiRegistration(*a.Registration))
	}
	return resp
}

type GetRegistrationsResponse struct {
	Data        []Registration `json:"data"`
	Cursor      *string        `json:"cursor,omitempty"`
	HasNextPage bool           `json:"hasNextPage"`
}

func attemptMessage(a *registration.Attempt) string {
	if a == nil {
		return ""
	}
	return a.Message
}

func (a *API) PostRegistrationCheckout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var body RegistrationForm
	if !a.decodeBody(w, r, &body) {
		return
	}

	attempt := a.workflow.Begin(body.toForm())
	session, err := a.workflow.Submit(ctx, attempt)
	if err != nil {
		logger.Warn("Failed to start checkout", "error", err)
		a.writeRegistrationError(w, r, err, attemptMessage(attempt))
		return
	}

	a.writeJSON(w, r, http.StatusOK, CheckoutResponse{
		Reference:        session.Reference,
		AuthorizationURL: session.AuthorizationURL,
		AccessCode:       session.AccessCode,
		PublicKey:        a.paystackPublicKey,
		Email:            session.Email,
		Amount:           session.Amount.Amount(),
		Currency:         session.Amount.Currency().Code,
	})
}

func (a *API) PostConfirmRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	attempt, err := a.workflow.ConfirmPayment(ctx, r.PathValue("reference"))
	if err != nil {
		logger.Error("Failed to confirm registration payment", "error", err)
		a.writeRegistrationError(w, r, err, attemptMessage(attempt))
		return
	}

	a.writeJSON(w, r, http.StatusOK, attemptToApiAttempt(attempt))
}

func (a *API) PostCancelRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attempt, err := a.workflow.Resume(ctx, r.PathValue("reference"))
	if err != nil {
		a.writeRegistrationError(w, r, err, "")
		return
	}

	err = a.workflow.PaymentClosed(ctx, attempt)
	if err != nil {
		a.writeRegistrationError(w, r, err, "")
		return
	}

	a.writeJSON(w, r, http.StatusOK, attemptToApiAttempt(attempt))
}

func (a *API) PostFreeRegistration(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var body RegistrationForm
	if !a.decodeBody(w, r, &body) {
		return
	}

	attempt, err := a.workflow.RegisterWithoutPayment(ctx, a.sessionFromRequest(r), body.toForm())
	if err != nil {
		logger.Warn("Failed to register without payment", "error", err)
		a.writeRegistrationError(w, r, err, attemptMessage(attempt))
		return
	}

	a.writeJSON(w, r, http.StatusOK, attemptToApiAttempt(attempt))
}

func (a *API) GetRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	limit := 10
	if l := r.URL.Query().Get("limit"); l != "" {
		userLimit, err := strconv.Atoi(l)
		if err != nil || userLimit < 1 || userLimit > 50 {
			a.writeError(w, r, http.StatusBadRequest, InputValidationError, "Limit must be between 1 and 50")
			return
		}
		limit = userLimit
	}

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = ptr.String(c)
	}

	session := a.sessionFromRequest(r)
	resolver := a.resolveRole(ctx, session)
	defer resolver.Close()

	view := dashboard.Gate(session.Current(), resolver.Current())
	if view.Kind != dashboard.VIEW_DASHBOARD {
		a.writeGateError(w, r, view)
		return
	}

	resp, err := a.db.ListRegistrations(ctx, int32(limit), cursor)
	if err != nil {
		logger.Error("Failed to list registrations", "error", err)
		a.writeRegistrationError(w, r, err, "")
		return
	}

	a.writeJSON(w, r, http.StatusOK, GetRegistrationsResponse{
		Data:        slices.Map(resp.Data, registrationToApiRegistration),
		Cursor:      resp.Cursor,
		HasNextPage: resp.HasNextPage,
	})
}

// writeRegistrationError maps workflow failures to responses. message is the
// attempt's user-visible message when there is one.
func (a *API) writeRegistrationError(w http.ResponseWriter, r *http.Request, err error, message string) {
	var regErr *registration.Error
	if !errors.As(err, &regErr) {
		a.writeError(w, r, http.StatusInternalServerError, InternalError, "Failed to register")
		return
	}

	if message == "" {
		message = regErr.Message
	}

	switch regErr.Reason {
	case registration.REASON_MISSING_FIELD, registration.REASON_INVALID_FIELD:
		var fieldErr *registration.FieldError
		e := Error{Message: message, Code: InputValidationError}
		if errors.As(err, &fieldErr) {
			e.Field = fieldErr.Field
		}
		a.writeJSON(w, r, http.StatusBadRequest, e)
	case registration.REASON_INVALID_CURSOR:
		a.writeError(w, r, http.StatusBadRequest, InputValidationError, message)
	case registration.REASON_SIGN_IN_REQUIRED:
		a.writeError(w, r, http.StatusUnauthorized, SignInRequired, message)
	case registration.REASON_REGISTRATION_DOES_NOT_EXIST:
		a.writeError(w, r, http.StatusNotFound, NotFound, "Checkout was not found")
	case registration.REASON_INVALID_STATE:
		a.writeError(w, r, http.StatusConflict, AlreadyExists, message)
	case registration.REASON_PAYMENT_NOT_CONFIRMED:
		a.writeError(w, r, http.StatusPaymentRequired, PaymentError, message)
	case registration.REASON_FAILED_TO_INITIATE_PAYMENT:
		a.writeError(w, r, http.StatusBadGateway, PaymentError, message)
	case registration.REASON_FAILED_TO_SEND_EMAIL:
		a.writeError(w, r, http.StatusInternalServerError, EmailError, message)
	default:
		a.writeError(w, r, http.StatusInternalServerError, InternalError, message)
	}
}

func (a *API) writeGateError(w http.ResponseWriter, r *http.Request, view dashboard.View) {
	switch view.Kind {
	case dashboard.VIEW_SIGN_IN:
		a.writeError(w, r, http.StatusUnauthorized, AuthError, "Please sign in")
	case dashboard.VIEW_LOADING:
		a.writeError(w, r, http.StatusServiceUnavailable, InternalError, "Still checking your access, try again")
	case dashboard.VIEW_ROLE_ERROR:
		a.writeError(w, r, http.StatusInternalServerError, InternalError, view.Message)
	default:
		a.writeError(w, r, http.StatusForbidden, AuthError, "Access denied for "+view.Email)
	}
}
