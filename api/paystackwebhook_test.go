package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GHIG-Portal/webinar-registration/paystack"
	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "sk_test_webhook"

func webhookRequest(payload string, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/paystack", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(paystack.SignatureHeader, signature)
	return req
}

func newWebhookTestAPI(t *testing.T) testAPI {
	ta := newTestAPI(t, LOCAL)
	client := paystack.NewClient(webhookSecret, "", noopLogger)
	ta.gateway.ConfirmWebhookFunc = client.ConfirmWebhook
	return ta
}

func TestPaystackWebhookMiddleware(t *testing.T) {
	successPayload := `{"event":"charge.success","data":{"reference":"ref123","status":"success","amount":5100,"currency":"GHS","customer":{"email":"ama@example.com"}}}`

	t.Run("charge success completes the registration", func(t *testing.T) {
		ta := newWebhookTestAPI(t)
		seedIntent(t, ta.db, "ref123")

		w := ta.serve(t, webhookRequest(successPayload, paystack.Sign(webhookSecret, []byte(successPayload))))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, ta.db.registrationCount())
		assert.Equal(t, 1, ta.emails.sentCount())
	})

	t.Run("redelivery does not register twice", func(t *testing.T) {
		ta := newWebhookTestAPI(t)
		seedIntent(t, ta.db, "ref123")
		signature := paystack.Sign(webhookSecret, []byte(successPayload))

		first := ta.serve(t, webhookRequest(successPayload, signature))
		second := ta.serve(t, webhookRequest(successPayload, signature))

		assert.Equal(t, http.StatusOK, first.Code)
		assert.Equal(t, http.StatusOK, second.Code)
		assert.Equal(t, 1, ta.db.registrationCount())
		assert.Equal(t, 1, ta.emails.sentCount())
	})

	t.Run("bad signature", func(t *testing.T) {
		ta := newWebhookTestAPI(t)
		seedIntent(t, ta.db, "ref123")

		w := ta.serve(t, webhookRequest(successPayload, paystack.Sign("not-the-secret", []byte(successPayload))))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, ta.db.registrationCount())
	})

	t.Run("other events are acknowledged", func(t *testing.T) {
		ta := newWebhookTestAPI(t)
		payload := `{"event":"transfer.success","data":{"reference":"t1"}}`

		w := ta.serve(t, webhookRequest(payload, paystack.Sign(webhookSecret, []byte(payload))))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, ta.db.registrationCount())
	})

	t.Run("unknown checkout is acknowledged", func(t *testing.T) {
		ta := newWebhookTestAPI(t)

		w := ta.serve(t, webhookRequest(successPayload, paystack.Sign(webhookSecret, []byte(successPayload))))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, ta.db.registrationCount())
	})

	t.Run("save failure asks for a retry", func(t *testing.T) {
		ta := newWebhookTestAPI(t)
		seedIntent(t, ta.db, "ref123")
		ta.db.CreateRegistrationFunc = func(ctx context.Context, reg registration.Registration) error {
			return registration.NewFailedToWriteError("Failed to create registration", errors.New("throttled"))
		}

		w := ta.serve(t, webhookRequest(successPayload, paystack.Sign(webhookSecret, []byte(successPayload))))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("other paths fall through", func(t *testing.T) {
		ta := newWebhookTestAPI(t)
		called := false
		handler := ta.paystackWebhookMiddleware("/webhooks/paystack")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusTeapot)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		require.True(t, called)
		assert.Equal(t, http.StatusTeapot, w.Code)
	})
}
