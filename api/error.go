package api

import (
	"encoding/json"
	"net/http"
)

type ErrorCode string

const (
	AlreadyExists        ErrorCode = "AlreadyExists"
	AuthError            ErrorCode = "AuthError"
	EmailError           ErrorCode = "EmailError"
	EmptyBody            ErrorCode = "EmptyBody"
	InputValidationError ErrorCode = "InputValidationError"
	InternalError        ErrorCode = "InternalError"
	InvalidBody          ErrorCode = "InvalidBody"
	LockedOut            ErrorCode = "LockedOut"
	NotFound             ErrorCode = "NotFound"
	PaymentError         ErrorCode = "PaymentError"
	SignInRequired       ErrorCode = "SignInRequired"
)

type Error struct {
	Message string    `json:"message"`
	Code    ErrorCode `json:"code,omitempty"`
	// Field names the form field a validation error is about.
	Field string `json:"field,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		a.getLoggerOrBaseLogger(r.Context()).Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(jsonBody)
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, status int, code ErrorCode, message string) {
	a.writeJSON(w, r, status, Error{Message: message, Code: code})
}

// decodeBody reads a JSON body into v, writing the 400 itself when it cannot.
func (a *API) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil || r.ContentLength == 0 {
		a.writeError(w, r, http.StatusBadRequest, EmptyBody, "Must specify a body")
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, 65536)
	err := json.NewDecoder(r.Body).Decode(v)
	if err != nil {
		a.getLoggerOrBaseLogger(r.Context()).Warn("Invalid request body", "error", err)
		a.writeError(w, r, http.StatusBadRequest, InvalidBody, "Invalid body")
		return false
	}

	return true
}
