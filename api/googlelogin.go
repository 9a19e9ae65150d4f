package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/GHIG-Portal/webinar-registration/identity"
)

type GoogleLoginRequest struct {
	GoogleJWT string `json:"googleJWT"`
}

type LoginResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (a *API) PostGoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var body GoogleLoginRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	id, err := identity.Authenticate(ctx, a.verifier, body.GoogleJWT, a.googleClientID)
	if err != nil {
		logger.Info("rejected login", slog.String("error", err.Error()))
		a.writeError(w, r, http.StatusUnauthorized, AuthError, "Invalid JWT")
		return
	}

	logger.Info("successful login", slog.String("email", id.Email))

	http.SetCookie(w, &http.Cookie{
		Name:     googleAuthJWTCookieKey,
		Value:    body.GoogleJWT,
		Expires:  id.ExpiresAt,
		Domain:   a.cookieDomain,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.env == PROD,
		SameSite: http.SameSiteStrictMode,
	})

	a.writeJSON(w, r, http.StatusOK, LoginResponse{Email: id.Email, ExpiresAt: id.ExpiresAt})
}

func (a *API) PostLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     googleAuthJWTCookieKey,
		Value:    "",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Domain:   a.cookieDomain,
		Path:     "/",
		HttpOnly: true,
		Secure:   a.env == PROD,
		SameSite: http.SameSiteStrictMode,
	})

	w.WriteHeader(http.StatusNoContent)
}
