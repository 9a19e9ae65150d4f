package api

import (
	"errors"
	"net/http"

	"github.com/GHIG-Portal/webinar-registration/access"
)

type AccessRequest struct {
	Email string `json:"email"`
	Pin   string `json:"pin"`
}

type AccessResponse struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

func (a *API) PostAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body AccessRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	reg, err := a.access.Verify(ctx, body.Email, body.Pin)
	if err != nil {
		var accessErr *access.Error
		if !errors.As(err, &accessErr) {
			a.writeError(w, r, http.StatusInternalServerError, InternalError, "Failed to check access")
			return
		}

		switch accessErr.Reason {
		case access.REASON_MISSING_FIELD:
			a.writeError(w, r, http.StatusBadRequest, InputValidationError, accessErr.Message)
		case access.REASON_INVALID_CREDENTIALS:
			a.writeError(w, r, http.StatusUnauthorized, AuthError, accessErr.Message)
		case access.REASON_LOCKED_OUT:
			a.writeError(w, r, http.StatusTooManyRequests, LockedOut, accessErr.Message)
		default:
			a.writeError(w, r, http.StatusInternalServerError, InternalError, accessErr.Message)
		}
		return
	}

	a.writeJSON(w, r, http.StatusOK, AccessResponse{
		Name:   reg.FullName(),
		Email:  reg.Email,
		Role:   string(reg.Role),
		Status: reg.Status(),
	})
}
