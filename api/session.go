package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/GHIG-Portal/webinar-registration/identity"
	"github.com/GHIG-Portal/webinar-registration/roles"
)

const (
	googleAuthJWTCookieKey = "GOOGLE_AUTH_JWT"

	roleLookupTimeout = 2 * time.Second
)

// sessionFromRequest builds the per-request session. A missing or invalid
// cookie leaves the session signed out.
func (a *API) sessionFromRequest(r *http.Request) *identity.Session {
	ctx := r.Context()
	session := identity.NewSession()

	cookie, err := r.Cookie(googleAuthJWTCookieKey)
	if err != nil || cookie.Value == "" {
		return session
	}

	id, err := identity.Authenticate(ctx, a.verifier, cookie.Value, a.googleClientID)
	if err != nil {
		a.getLoggerOrBaseLogger(ctx).Info("ignoring invalid auth cookie", slog.String("error", err.Error()))
		return session
	}

	session.SignIn(ctx, id)
	return session
}

// resolveRole waits for the session's role lookup to settle so the gate sees
// a final answer instead of the loading state.
func (a *API) resolveRole(ctx context.Context, session *identity.Session) *roles.Resolver {
	resolver := roles.NewResolver(ctx, a.db, session, a.getLoggerOrBaseLogger(ctx))

	ctx, cancel := context.WithTimeout(ctx, roleLookupTimeout)
	defer cancel()

	_, err := resolver.Wait(ctx)
	if err != nil {
		a.getLoggerOrBaseLogger(ctx).Warn("role lookup did not finish", slog.String("error", err.Error()))
	}

	return resolver
}
