package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/International-Combat-Archery-Alliance/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactBody = `{"surname":"Mensah","otherNames":"Ama","email":"ama@example.com","phone":"0240000000","price":"51gh","role":"member"}`

func TestPostContacts(t *testing.T) {
	t.Run("sends the invoice", func(t *testing.T) {
		ta := newTestAPI(t, LOCAL)

		w := ta.serve(t, jsonRequest(http.MethodPost, "/api/contacts", contactBody))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Invoice email sent successfully", decode[MessageResponse](t, w.Body.Bytes()).Message)
		require.Equal(t, 1, ta.emails.sentCount())
		sent := ta.emails.sent[0]
		assert.Equal(t, []string{"ama@example.com"}, sent.ToAddresses)
		assert.Contains(t, sent.FromAddress, testFromAddress)
		assert.Contains(t, sent.TextBody, "51gh")
		assert.Equal(t, 0, ta.db.registrationCount())
	})

	t.Run("invoice carries no access pin", func(t *testing.T) {
		ta := newTestAPI(t, LOCAL)

		w := ta.serve(t, jsonRequest(http.MethodPost, "/api/contacts", contactBody))

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		require.Equal(t, 1, ta.emails.sentCount())
		assert.NotContains(t, ta.emails.sent[0].TextBody, "Access PIN")
		assert.NotContains(t, ta.emails.sent[0].HTMLBody, "Access PIN")
	})

	t.Run("missing fields", func(t *testing.T) {
		ta := newTestAPI(t, LOCAL)

		w := ta.serve(t, jsonRequest(http.MethodPost, "/api/contacts", `{"surname":"Mensah","email":"ama@example.com"}`))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields", decode[Error](t, w.Body.Bytes()).Message)
		assert.Equal(t, 0, ta.emails.sentCount())
	})

	t.Run("mail failure", func(t *testing.T) {
		ta := newTestAPI(t, LOCAL)
		ta.emails.SendEmailFunc = func(ctx context.Context, e email.Email) error {
			return errors.New("smtp unavailable")
		}

		w := ta.serve(t, jsonRequest(http.MethodPost, "/api/contacts", contactBody))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to send invoice: smtp unavailable", decode[Error](t, w.Body.Bytes()).Message)
	})
}
