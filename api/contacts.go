package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GHIG-Portal/webinar-registration/registration"
)

type ContactRequest struct {
	Surname    string `json:"surname"`
	OtherNames string `json:"otherNames"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Price      string `json:"price"`
	Role       string `json:"role"`
}

func (c ContactRequest) complete() bool {
	for _, v := range []string{c.Surname, c.OtherNames, c.Email, c.Phone, c.Price, c.Role} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// PostContacts emails an invoice for the submitted details. Nothing is stored.
func (a *API) PostContacts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := a.getLoggerOrBaseLogger(ctx)

	var body ContactRequest
	if !a.decodeBody(w, r, &body) {
		return
	}

	if !body.complete() {
		a.writeError(w, r, http.StatusBadRequest, InputValidationError, "Missing required fields")
		return
	}

	err := registration.SendInvoiceEmail(ctx, a.emailSender, a.fromAddress, registration.Invoice{
		Surname:    strings.TrimSpace(body.Surname),
		OtherNames: strings.TrimSpace(body.OtherNames),
		Email:      strings.TrimSpace(body.Email),
		Phone:      strings.TrimSpace(body.Phone),
		Role:       strings.TrimSpace(body.Role),
		Price:      strings.TrimSpace(body.Price),
		Year:       time.Now().Year(),
	})
	if err != nil {
		logger.Error("Failed to send invoice email", "error", err)
		a.writeError(w, r, http.StatusInternalServerError, EmailError, fmt.Sprintf("Failed to send invoice: %s", err))
		return
	}

	a.writeJSON(w, r, http.StatusOK, MessageResponse{Message: "Invoice email sent successfully"})
}
