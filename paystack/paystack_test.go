package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/International-Combat-Archery-Alliance/payments"
	"github.com/Rhymond/go-money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "sk_test_secret"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(testSecret, "https://webinar.example.com/callback", slog.New(slog.DiscardHandler), WithBaseURL(server.URL), WithHTTPClient(server.Client()))
}

func TestInitiateCheckout(t *testing.T) {
	t.Run("sends amount in minor units", func(t *testing.T) {
		var got map[string]any
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/transaction/initialize", r.URL.Path)
			assert.Equal(t, "Bearer "+testSecret, r.Header.Get("Authorization"))

			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))

			_, _ = io.WriteString(w, `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"ref123"}}`)
		})

		session, err := c.InitiateCheckout(context.Background(), registration.CheckoutRequest{
			Reference: "ref123",
			Email:     "jane@example.com",
			Amount:    money.New(7000, "GHS"),
			Metadata:  map[string]string{"surname": "Doe"},
		})
		require.NoError(t, err)

		assert.Equal(t, "7000", got["amount"])
		assert.Equal(t, "GHS", got["currency"])
		assert.Equal(t, "ref123", got["reference"])
		assert.Equal(t, "https://webinar.example.com/callback", got["callback_url"])
		assert.Equal(t, "https://checkout.paystack.com/abc", session.AuthorizationURL)
		assert.Equal(t, "abc", session.AccessCode)
		assert.Equal(t, "ref123", session.Reference)
	})

	t.Run("rejected request", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"status":false,"message":"Invalid key"}`)
		})

		_, err := c.InitiateCheckout(context.Background(), registration.CheckoutRequest{Reference: "ref123", Amount: money.New(5100, "GHS")})

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		assert.Equal(t, REASON_REQUEST_REJECTED, payErr.Reason)
		assert.Equal(t, "Invalid key", payErr.Message)
	})
}

func TestVerifyPayment(t *testing.T) {
	t.Run("successful transaction", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transaction/verify/ref123", r.URL.Path)
			_, _ = io.WriteString(w, `{"status":true,"message":"Verification successful","data":{"reference":"ref123","status":"success","amount":5100,"currency":"GHS","paid_at":"2025-03-09T12:00:00.000Z","customer":{"email":"jane@example.com"}}}`)
		})

		confirmation, err := c.VerifyPayment(context.Background(), "ref123")
		require.NoError(t, err)

		assert.Equal(t, "ref123", confirmation.Reference)
		assert.Equal(t, "jane@example.com", confirmation.Email)
		same, err := confirmation.Amount.Equals(money.New(5100, "GHS"))
		require.NoError(t, err)
		assert.True(t, same)
		assert.Equal(t, 2025, confirmation.PaidAt.Year())
	})

	t.Run("abandoned transaction", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":true,"message":"Verification successful","data":{"reference":"ref123","status":"abandoned","amount":5100,"currency":"GHS","paid_at":null,"customer":{"email":"jane@example.com"}}}`)
		})

		_, err := c.VerifyPayment(context.Background(), "ref123")

		var payErr *payments.Error
		require.True(t, errors.As(err, &payErr))
		assert.Equal(t, payments.ErrorReasonCheckoutExpired, payErr.Reason)
	})

	t.Run("failed transaction", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"status":true,"message":"Verification successful","data":{"reference":"ref123","status":"failed","amount":5100,"currency":"GHS","customer":{"email":"jane@example.com"}}}`)
		})

		_, err := c.VerifyPayment(context.Background(), "ref123")

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		assert.Equal(t, REASON_PAYMENT_FAILED, payErr.Reason)
	})
}

func TestConfirmWebhook(t *testing.T) {
	c := NewClient(testSecret, "", slog.New(slog.DiscardHandler))

	t.Run("valid charge.success", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{"reference":"ref123","status":"success","amount":10200,"currency":"GHS","customer":{"email":"jane@example.com"}}}`)

		confirmation, err := c.ConfirmWebhook(context.Background(), payload, Sign(testSecret, payload))
		require.NoError(t, err)
		assert.Equal(t, "ref123", confirmation.Reference)
		assert.Equal(t, int64(10200), confirmation.Amount.Amount())
	})

	t.Run("bad signature", func(t *testing.T) {
		payload := []byte(`{"event":"charge.success","data":{}}`)

		_, err := c.ConfirmWebhook(context.Background(), payload, Sign("another-secret", payload))

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		assert.Equal(t, REASON_INVALID_SIGNATURE, payErr.Reason)
	})

	t.Run("other events are ignored", func(t *testing.T) {
		payload := []byte(`{"event":"transfer.success","data":{"reference":"t1"}}`)

		_, err := c.ConfirmWebhook(context.Background(), payload, Sign(testSecret, payload))

		var payErr *payments.Error
		require.True(t, errors.As(err, &payErr))
		assert.Equal(t, payments.ErrorReasonNotCheckoutConfirmedEvent, payErr.Reason)
	})

	t.Run("garbage payload", func(t *testing.T) {
		payload := []byte(`not json`)

		_, err := c.ConfirmWebhook(context.Background(), payload, Sign(testSecret, payload))

		var payErr *Error
		require.True(t, errors.As(err, &payErr))
		assert.Equal(t, REASON_INVALID_PAYLOAD, payErr.Reason)
	})
}
