package access

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"github.com/GHIG-Portal/webinar-registration/registration"
	gocache "github.com/patrickmn/go-cache"
)

const (
	MaxFailedAttempts = 5
	LockoutWindow     = 15 * time.Minute
)

type RegistrationFinder interface {
	GetRegistrationsByEmail(ctx context.Context, email string) ([]registration.Registration, error)
}

// Verifier admits registrants to the event with the email and PIN from their
// confirmation email.
type Verifier struct {
	registrations RegistrationFinder
	failures      *gocache.Cache
	logger        *slog.Logger
}

func NewVerifier(registrations RegistrationFinder, logger *slog.Logger) *Verifier {
	return &Verifier{
		registrations: registrations,
		failures:      gocache.New(LockoutWindow, 2*LockoutWindow),
		logger:        logger,
	}
}

func (v *Verifier) Verify(ctx context.Context, email string, pin string) (registration.Registration, error) {
	email = strings.TrimSpace(email)
	pin = strings.TrimSpace(pin)
	if email == "" || pin == "" {
		return registration.Registration{}, NewMissingFieldError("Please enter your email and PIN")
	}

	key := strings.ToLower(email)
	if v.lockedOut(key) {
		v.logger.WarnContext(ctx, "access attempt while locked out", slog.String("email", key))
		return registration.Registration{}, NewLockedOutError()
	}

	regs, err := v.registrations.GetRegistrationsByEmail(ctx, email)
	if err != nil {
		v.logger.ErrorContext(ctx, "failed to look up registrations", slog.String("error", err.Error()))
		return registration.Registration{}, NewFailedToFetchError("Failed to check access", err)
	}

	for _, reg := range regs {
		if reg.PinCode != "" && subtle.ConstantTimeCompare([]byte(reg.PinCode), []byte(pin)) == 1 {
			v.failures.Delete(key)
			return reg, nil
		}
	}

	v.recordFailure(key)
	return registration.Registration{}, NewInvalidCredentialsError()
}

func (v *Verifier) lockedOut(key string) bool {
	count, found := v.failures.Get(key)
	if !found {
		return false
	}
	n, ok := count.(int)
	return ok && n >= MaxFailedAttempts
}

// recordFailure counts failures inside a window that starts at the first one.
func (v *Verifier) recordFailure(key string) {
	if err := v.failures.Add(key, 1, gocache.DefaultExpiration); err == nil {
		return
	}
	_, _ = v.failures.IncrementInt(key, 1)
}
