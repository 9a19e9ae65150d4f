package dashboard

import (
	"context"
	"io"
	"log/slog"

	"github.com/GHIG-Portal/webinar-registration/identity"
	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/GHIG-Portal/webinar-registration/roles"
)

type ViewKind string

const (
	VIEW_SIGN_IN       ViewKind = "SIGN_IN"
	VIEW_LOADING       ViewKind = "LOADING"
	VIEW_ACCESS_DENIED ViewKind = "ACCESS_DENIED"
	VIEW_ROLE_ERROR    ViewKind = "ROLE_ERROR"
	VIEW_DASHBOARD     ViewKind = "DASHBOARD"
)

type View struct {
	Kind ViewKind
	// Email is the signed-in address, shown on the access denied view.
	Email string
	// Message explains a ROLE_ERROR view.
	Message       string
	OfferSignOut  bool
	Stats         Stats
	Registrations Page[registration.Registration]
}

// Gate decides which view a session sees. Checks run in a fixed order and
// the first match wins.
func Gate(id *identity.Identity, resolution roles.Resolution) View {
	switch {
	case id == nil:
		return View{Kind: VIEW_SIGN_IN}
	case id.Email == "":
		return View{Kind: VIEW_ACCESS_DENIED, OfferSignOut: true}
	case resolution.Status == roles.STATUS_LOADING || resolution.Status == roles.STATUS_NONE:
		return View{Kind: VIEW_LOADING, Email: id.Email}
	case resolution.Status == roles.STATUS_NOT_FOUND:
		return View{Kind: VIEW_ACCESS_DENIED, Email: id.Email, OfferSignOut: true}
	case resolution.Status == roles.STATUS_RESOLVED && !resolution.IsAdmin():
		return View{Kind: VIEW_ACCESS_DENIED, Email: id.Email, OfferSignOut: true}
	case resolution.Status == roles.STATUS_ERROR:
		message := "Failed to check your access"
		if resolution.Err != nil {
			message = resolution.Err.Error()
		}
		return View{Kind: VIEW_ROLE_ERROR, Email: id.Email, Message: message, OfferSignOut: true}
	}

	return View{Kind: VIEW_DASHBOARD, Email: id.Email}
}

type RoleSource interface {
	Current() roles.Resolution
}

type Aggregator struct {
	session  *identity.Session
	resolver RoleSource
	repo     registration.Repository
	logger   *slog.Logger
}

func NewAggregator(session *identity.Session, resolver RoleSource, repo registration.Repository, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		session:  session,
		resolver: resolver,
		repo:     repo,
		logger:   logger,
	}
}

// Render builds the view for the current session. Registrations are only
// fetched once the gate has opened.
func (a *Aggregator) Render(ctx context.Context, page int) (View, error) {
	view := Gate(a.session.Current(), a.resolver.Current())
	if view.Kind != VIEW_DASHBOARD {
		return view, nil
	}

	records, err := a.repo.GetAllRegistrations(ctx)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to fetch registrations for dashboard", slog.String("error", err.Error()))
		return view, NewFailedToFetchError("Failed to fetch registrations", err)
	}

	view.Stats = ComputeStats(records)
	view.Registrations = Paginate(records, page, PageSize)

	return view, nil
}

// Export writes every registration as CSV. Only an admin session may export.
func (a *Aggregator) Export(ctx context.Context, w io.Writer) error {
	view := Gate(a.session.Current(), a.resolver.Current())
	if view.Kind != VIEW_DASHBOARD {
		return NewNotAuthorizedError(view.Kind)
	}

	records, err := a.repo.GetAllRegistrations(ctx)
	if err != nil {
		return NewFailedToFetchError("Failed to fetch registrations", err)
	}

	err = WriteCSV(w, records)
	if err != nil {
		return NewFailedToWriteError("Failed to write export", err)
	}

	return nil
}
