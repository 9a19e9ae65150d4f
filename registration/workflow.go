package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GHIG-Portal/webinar-registration/identity"
	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	ConfirmationRedirect = "/thank-you"

	MESSAGE_SUCCESS      = "Registration submitted successfully!"
	MESSAGE_SAVE_FAILED  = "failed to save registration"
	MESSAGE_NOT_VERIFIED = "Payment could not be confirmed"
)

var tracer = otel.Tracer("github.com/GHIG-Portal/webinar-registration/registration")

// Attempt is a single registration attempt as the registrant sees it.
type Attempt struct {
	State        State
	Form         Form
	Reference    string
	Checkout     *CheckoutSession
	Registration *Registration
	// Message is the one user-visible message for the attempt.
	Message    string
	Err        error
	IsLoading  bool
	RedirectTo string

	intent *RegistrationIntent
}

// Edit returns a failed or editing attempt to EDITING with new field values.
func (a *Attempt) Edit(form Form) error {
	if a.State != STATE_EDITING && a.State != STATE_FAILED {
		return NewInvalidStateError(a.State, "edit the form")
	}

	a.State = STATE_EDITING
	a.Form = form
	a.Message = ""
	a.Err = nil
	a.IsLoading = false

	return nil
}

type Workflow struct {
	repo        Repository
	intents     IntentRepository
	gateway     PaymentGateway
	emailSender email.Sender
	fromAddress string
	alerter     Alerter
	logger      *slog.Logger

	generatePin  PinGenerator
	newReference func(time.Time) string
	now          func() time.Time
}

func NewWorkflow(repo Repository, intents IntentRepository, gateway PaymentGateway, emailSender email.Sender, fromAddress string, alerter Alerter, logger *slog.Logger) *Workflow {
	return &Workflow{
		repo:         repo,
		intents:      intents,
		gateway:      gateway,
		emailSender:  emailSender,
		fromAddress:  fromAddress,
		alerter:      alerter,
		logger:       logger,
		generatePin:  GeneratePinCode,
		newReference: newPaymentReference,
		now:          time.Now,
	}
}

func (w *Workflow) Begin(form Form) *Attempt {
	return &Attempt{
		State: STATE_EDITING,
		Form:  form,
	}
}

// Submit validates the attempt and starts a hosted checkout for it.
func (w *Workflow) Submit(ctx context.Context, a *Attempt) (CheckoutSession, error) {
	ctx, span := tracer.Start(ctx, "registration.Submit")
	defer span.End()

	if a.State != STATE_EDITING {
		return CheckoutSession{}, NewInvalidStateError(a.State, "submit")
	}

	a.State = STATE_VALIDATING
	a.Message = ""
	a.Err = nil

	err := a.Form.Validate()
	if err != nil {
		w.fail(a, err, userMessage(err))
		return CheckoutSession{}, err
	}
	a.Form = a.Form.normalized()

	a.State = STATE_AWAITING_PAYMENT
	a.IsLoading = true

	now := w.now()
	intent := RegistrationIntent{
		Version:   1,
		Reference: w.newReference(now),
		Form:      a.Form,
		Amount:    a.Form.PriceOption.Price(),
		CreatedAt: now,
		ExpiresAt: now.Add(intentTTL),
	}
	span.SetAttributes(attribute.String("payment.reference", intent.Reference))

	err = w.intents.CreateRegistrationIntent(ctx, intent)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to store registration intent", slog.String("error", err.Error()))
		w.fail(a, err, "Failed to start payment")
		return CheckoutSession{}, err
	}

	session, err := w.gateway.InitiateCheckout(ctx, newCheckoutRequest(intent.Reference, a.Form, intent.Amount))
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to initiate checkout", slog.String("error", err.Error()), slog.String("reference", intent.Reference))
		w.deleteIntent(ctx, intent.Reference)

		payErr := NewFailedToInitiatePaymentError("Failed to start payment", err)
		w.fail(a, payErr, payErr.Message)
		return CheckoutSession{}, payErr
	}

	a.Reference = intent.Reference
	a.Checkout = &session
	a.intent = &intent

	return session, nil
}

// Resume rebuilds the AWAITING_PAYMENT attempt stored under reference.
func (w *Workflow) Resume(ctx context.Context, reference string) (*Attempt, error) {
	intent, err := w.intents.GetRegistrationIntent(ctx, reference)
	if err != nil {
		return nil, err
	}

	// A captured payment still registers after the checkout window closes.
	if intent.Expired(w.now()) {
		w.logger.WarnContext(ctx, "resuming expired registration intent", slog.String("reference", reference))
	}

	return &Attempt{
		State:     STATE_AWAITING_PAYMENT,
		Form:      intent.Form,
		Reference: intent.Reference,
		IsLoading: true,
		intent:    &intent,
	}, nil
}

// PaymentClosed handles the registrant dismissing the gateway dialog. It is
// not an error: the attempt goes back to EDITING and nothing is stored.
func (w *Workflow) PaymentClosed(ctx context.Context, a *Attempt) error {
	if a.State != STATE_AWAITING_PAYMENT {
		return NewInvalidStateError(a.State, "close the payment")
	}

	w.deleteIntent(ctx, a.Reference)

	a.State = STATE_EDITING
	a.Reference = ""
	a.Checkout = nil
	a.intent = nil
	a.Message = ""
	a.Err = nil
	a.IsLoading = false

	return nil
}

// PaymentSucceeded completes an attempt once the gateway reports success for
// reference. The reference is verified with the gateway before anything is saved.
func (w *Workflow) PaymentSucceeded(ctx context.Context, a *Attempt, reference string) error {
	ctx, span := tracer.Start(ctx, "registration.PaymentSucceeded", trace.WithAttributes(attribute.String("payment.reference", reference)))
	defer span.End()

	if a.State != STATE_AWAITING_PAYMENT {
		return NewInvalidStateError(a.State, "confirm a payment")
	}

	if reference != a.Reference {
		err := NewPaymentNotConfirmedError(fmt.Sprintf("Reference %q does not belong to this registration", reference), nil)
		w.fail(a, err, MESSAGE_NOT_VERIFIED)
		return err
	}

	confirmation, err := w.gateway.VerifyPayment(ctx, reference)
	if err != nil {
		w.logger.WarnContext(ctx, "payment verification failed", slog.String("error", err.Error()), slog.String("reference", reference))

		payErr := NewPaymentNotConfirmedError("Gateway did not confirm the payment", err)
		w.fail(a, payErr, MESSAGE_NOT_VERIFIED)
		return payErr
	}

	return w.completePaid(ctx, a, confirmation)
}

// ConfirmPayment drives PaymentSucceeded for a reference reported by the
// registrant's browser. A reference that was already completed returns the
// existing registration.
func (w *Workflow) ConfirmPayment(ctx context.Context, reference string) (*Attempt, error) {
	a, err := w.resumeOrCompleted(ctx, reference)
	if err != nil || a.State == STATE_COMPLETE {
		return a, err
	}

	return a, w.PaymentSucceeded(ctx, a, reference)
}

// ConfirmFromWebhook completes the attempt named by a signed gateway webhook.
func (w *Workflow) ConfirmFromWebhook(ctx context.Context, payload []byte, signature string) (*Attempt, error) {
	confirmation, err := w.gateway.ConfirmWebhook(ctx, payload, signature)
	if err != nil {
		return nil, err
	}

	a, err := w.resumeOrCompleted(ctx, confirmation.Reference)
	if err != nil {
		var regErr *Error
		if errors.As(err, &regErr) && regErr.Reason == REASON_REGISTRATION_DOES_NOT_EXIST {
			w.alert(ctx, IncompleteRegistration{
				Reference: confirmation.Reference,
				Email:     confirmation.Email,
				Stage:     STATE_AWAITING_PAYMENT,
				Reason:    "payment confirmed for an unknown checkout",
			})
		}
		return nil, err
	}
	if a.State == STATE_COMPLETE {
		return a, nil
	}

	return a, w.completePaid(ctx, a, confirmation)
}

// RegisterWithoutPayment is the sign-in gated variant: the record is created at
// plain submission with no payment reference. Without a signed-in identity the
// form is inert and nothing happens.
func (w *Workflow) RegisterWithoutPayment(ctx context.Context, session *identity.Session, form Form) (*Attempt, error) {
	ctx, span := tracer.Start(ctx, "registration.RegisterWithoutPayment")
	defer span.End()

	a := w.Begin(form)

	if session == nil || session.Current() == nil {
		err := NewSignInRequiredError()
		a.Err = err
		a.Message = err.Message
		return a, err
	}

	a.State = STATE_VALIDATING
	err := a.Form.Validate()
	if err != nil {
		w.fail(a, err, userMessage(err))
		return a, err
	}
	a.Form = a.Form.normalized()
	a.IsLoading = true

	return a, w.persistAndNotify(ctx, a, "")
}

func (w *Workflow) resumeOrCompleted(ctx context.Context, reference string) (*Attempt, error) {
	a, err := w.Resume(ctx, reference)
	if err == nil {
		return a, nil
	}

	var regErr *Error
	if !errors.As(err, &regErr) || regErr.Reason != REASON_REGISTRATION_DOES_NOT_EXIST {
		return nil, err
	}

	existing, fetchErr := w.repo.GetRegistrationByPaymentReference(ctx, reference)
	if fetchErr != nil {
		return nil, err
	}

	return w.completedAttempt(existing), nil
}

func (w *Workflow) completePaid(ctx context.Context, a *Attempt, confirmation PaymentConfirmation) error {
	if a.intent != nil && a.intent.Amount != nil && confirmation.Amount != nil {
		same, err := confirmation.Amount.Equals(a.intent.Amount)
		if err != nil || !same {
			payErr := NewPaymentNotConfirmedError(fmt.Sprintf("Paid %s but expected %s", confirmation.Amount.Display(), a.intent.Amount.Display()), err)
			w.alert(ctx, IncompleteRegistration{
				Reference: confirmation.Reference,
				Email:     a.Form.Email,
				Stage:     STATE_AWAITING_PAYMENT,
				Reason:    payErr.Message,
			})
			w.fail(a, payErr, MESSAGE_NOT_VERIFIED)
			return payErr
		}
	}

	return w.persistAndNotify(ctx, a, confirmation.Reference)
}

func (w *Workflow) persistAndNotify(ctx context.Context, a *Attempt, paymentReference string) error {
	a.State = STATE_PERSISTING

	reg, duplicate, err := w.persist(ctx, a.Form, paymentReference)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to save registration", slog.String("error", err.Error()), slog.String("reference", paymentReference))
		if paymentReference != "" {
			w.alert(ctx, IncompleteRegistration{
				Reference: paymentReference,
				Email:     a.Form.Email,
				Stage:     STATE_PERSISTING,
				Reason:    err.Error(),
			})
		}
		w.fail(a, err, MESSAGE_SAVE_FAILED)
		return err
	}
	a.Registration = &reg

	if paymentReference != "" {
		w.deleteIntent(ctx, paymentReference)
	}

	if duplicate {
		w.logger.InfoContext(ctx, "registration already completed", slog.String("reference", paymentReference))
		w.complete(a)
		return nil
	}

	a.State = STATE_NOTIFYING_BY_EMAIL

	err = SendRegistrationConfirmationEmail(ctx, w.emailSender, w.fromAddress, reg)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to send confirmation email", slog.String("error", err.Error()), slog.String("email", reg.Email))
		if paymentReference != "" {
			w.alert(ctx, IncompleteRegistration{
				Reference: paymentReference,
				Email:     reg.Email,
				Stage:     STATE_NOTIFYING_BY_EMAIL,
				Reason:    err.Error(),
			})
		}
		mailErr := NewFailedToSendEmailError(err)
		w.fail(a, mailErr, mailErr.Message)
		return mailErr
	}

	w.complete(a)
	return nil
}

// persist writes the registration. duplicate is true when the payment
// reference was already registered, in which case the stored record is returned.
func (w *Workflow) persist(ctx context.Context, form Form, paymentReference string) (Registration, bool, error) {
	pin, err := w.generatePin()
	if err != nil {
		return Registration{}, false, NewFailedToWriteError("Failed to generate pin code", err)
	}

	reg := newRegistration(form, pin, paymentReference, w.now())

	err = w.repo.CreateRegistration(ctx, reg)
	if err == nil {
		return reg, false, nil
	}

	var regErr *Error
	if paymentReference != "" && errors.As(err, &regErr) && regErr.Reason == REASON_REGISTRATION_ALREADY_EXISTS {
		existing, fetchErr := w.repo.GetRegistrationByPaymentReference(ctx, paymentReference)
		if fetchErr != nil {
			return Registration{}, false, fetchErr
		}
		return existing, true, nil
	}

	return Registration{}, false, err
}

func (w *Workflow) completedAttempt(reg Registration) *Attempt {
	a := &Attempt{
		Form:         reg.Form(),
		Reference:    reg.PaymentReference,
		Registration: &reg,
	}
	w.complete(a)
	return a
}

func (w *Workflow) complete(a *Attempt) {
	a.State = STATE_COMPLETE
	a.IsLoading = false
	a.Message = MESSAGE_SUCCESS
	a.Err = nil
	a.RedirectTo = ConfirmationRedirect
}

func (w *Workflow) fail(a *Attempt, err error, message string) {
	a.State = STATE_FAILED
	a.IsLoading = false
	a.Err = err
	a.Message = message
}

func (w *Workflow) deleteIntent(ctx context.Context, reference string) {
	err := w.intents.DeleteRegistrationIntent(ctx, reference)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to delete registration intent", slog.String("error", err.Error()), slog.String("reference", reference))
	}
}

func (w *Workflow) alert(ctx context.Context, incident IncompleteRegistration) {
	if w.alerter == nil {
		return
	}

	incident.OccurredAt = w.now()
	err := w.alerter.RegistrationIncomplete(ctx, incident)
	if err != nil {
		w.logger.ErrorContext(ctx, "failed to raise operator alert", slog.String("error", err.Error()), slog.String("reference", incident.Reference))
	}
}

func userMessage(err error) string {
	var regErr *Error
	if errors.As(err, &regErr) {
		return regErr.Message
	}
	return err.Error()
}

// newPaymentReference is time ordered with a random suffix so two submits in
// the same millisecond do not collide.
func newPaymentReference(now time.Time) string {
	return fmt.Sprintf("WEB-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
