package roles

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/GHIG-Portal/webinar-registration/identity"
)

type Status int

const (
	STATUS_NONE Status = iota
	STATUS_LOADING
	STATUS_RESOLVED
	STATUS_NOT_FOUND
	STATUS_ERROR
)

type Resolution struct {
	Status Status
	Email  string
	Role   string
	Record *UserRole
	Err    error
}

func (r Resolution) IsAdmin() bool {
	return r.Status == STATUS_RESOLVED && r.Role == ADMIN
}

// Resolver keeps the role of whoever is signed in to a session up to date.
type Resolver struct {
	repo   Repository
	logger *slog.Logger

	mu         sync.Mutex
	current    Resolution
	generation uint64
	done       chan struct{}

	unsubscribe func()
}

// NewResolver subscribes to session and resolves the identity that is
// already signed in, if any.
func NewResolver(ctx context.Context, repo Repository, session *identity.Session, logger *slog.Logger) *Resolver {
	r := &Resolver{
		repo:   repo,
		logger: logger,
		done:   closedChan(),
	}

	r.unsubscribe = session.Subscribe(r.onIdentityChange)
	r.onIdentityChange(ctx, session.Current())

	return r
}

func (r *Resolver) Close() {
	r.unsubscribe()
}

func (r *Resolver) Current() Resolution {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.current
}

// Wait blocks until the lookup in flight when it was called has settled.
func (r *Resolver) Wait(ctx context.Context) (Resolution, error) {
	r.mu.Lock()
	done := r.done
	r.mu.Unlock()

	select {
	case <-done:
		return r.Current(), nil
	case <-ctx.Done():
		return r.Current(), ctx.Err()
	}
}

func (r *Resolver) onIdentityChange(ctx context.Context, id *identity.Identity) {
	r.mu.Lock()
	// The previous answer never outlives the identity it was for.
	r.current = Resolution{}
	r.generation++
	gen := r.generation

	if id == nil || id.Email == "" {
		r.done = closedChan()
		r.mu.Unlock()
		return
	}

	email := NormalizeEmail(id.Email)
	r.current = Resolution{Status: STATUS_LOADING, Email: email}
	done := make(chan struct{})
	r.done = done
	r.mu.Unlock()

	go r.resolve(context.WithoutCancel(ctx), gen, email, done)
}

func (r *Resolver) resolve(ctx context.Context, gen uint64, email string, done chan struct{}) {
	defer close(done)

	record, err := r.repo.GetUserRole(ctx, email)

	result := Resolution{Email: email}
	switch {
	case err == nil:
		result.Status = STATUS_RESOLVED
		result.Role = record.Role
		result.Record = &record
	case isNotFound(err):
		result.Status = STATUS_NOT_FOUND
	default:
		r.logger.ErrorContext(ctx, "failed to resolve user role", slog.String("error", err.Error()), slog.String("email", email))
		result.Status = STATUS_ERROR
		result.Err = err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if gen != r.generation {
		r.logger.DebugContext(ctx, "discarding stale role lookup", slog.String("email", email))
		return
	}
	r.current = result
}

func isNotFound(err error) bool {
	var rolesErr *Error
	return errors.As(err, &rolesErr) && rolesErr.Reason == REASON_USER_DOES_NOT_EXIST
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
