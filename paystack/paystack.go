package paystack

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/International-Combat-Archery-Alliance/payments"
	"github.com/Rhymond/go-money"
)

const (
	DefaultBaseURL = "https://api.paystack.co"

	SignatureHeader = "x-paystack-signature"

	EVENT_CHARGE_SUCCESS = "charge.success"

	STATUS_SUCCESS   = "success"
	STATUS_ABANDONED = "abandoned"

	requestTimeout = 15 * time.Second
)

var _ registration.PaymentGateway = &Client{}

// Client talks to the Paystack transactions API.
type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	httpClient  *http.Client
	logger      *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(secretKey string, callbackURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		secretKey:   secretKey,
		callbackURL: callbackURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type initializeRequest struct {
	Email       string            `json:"email"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Reference   string            `json:"reference"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type initializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type transaction struct {
	Reference string    `json:"reference"`
	Status    string    `json:"status"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	PaidAt    time.Time `json:"paid_at"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

func (t transaction) confirmation() (registration.PaymentConfirmation, error) {
	switch t.Status {
	case STATUS_SUCCESS:
	case STATUS_ABANDONED:
		return registration.PaymentConfirmation{}, &payments.Error{Reason: payments.ErrorReasonCheckoutExpired}
	default:
		return registration.PaymentConfirmation{}, NewPaymentFailedError(t.Reference, t.Status)
	}

	return registration.PaymentConfirmation{
		Reference: t.Reference,
		Email:     t.Customer.Email,
		Amount:    money.New(t.Amount, strings.ToUpper(t.Currency)),
		PaidAt:    t.PaidAt,
	}, nil
}

type webhookEvent struct {
	Event string      `json:"event"`
	Data  transaction `json:"data"`
}

func (c *Client) InitiateCheckout(ctx context.Context, request registration.CheckoutRequest) (registration.CheckoutSession, error) {
	body := initializeRequest{
		Email:       request.Email,
		Amount:      fmt.Sprintf("%d", request.Amount.Amount()),
		Currency:    request.Amount.Currency().Code,
		Reference:   request.Reference,
		CallbackURL: c.callbackURL,
		Metadata:    request.Metadata,
	}

	var resp envelope[initializeData]
	err := c.do(ctx, http.MethodPost, "/transaction/initialize", body, &resp)
	if err != nil {
		return registration.CheckoutSession{}, err
	}

	return registration.CheckoutSession{
		Reference:        resp.Data.Reference,
		AuthorizationURL: resp.Data.AuthorizationURL,
		AccessCode:       resp.Data.AccessCode,
		Email:            request.Email,
		Amount:           request.Amount,
	}, nil
}

func (c *Client) VerifyPayment(ctx context.Context, reference string) (registration.PaymentConfirmation, error) {
	var resp envelope[transaction]
	err := c.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &resp)
	if err != nil {
		return registration.PaymentConfirmation{}, err
	}

	return resp.Data.confirmation()
}

// ConfirmWebhook checks the HMAC-SHA512 signature of payload and returns the
// payment it reports. Events other than a successful charge are reported with
// payments.ErrorReasonNotCheckoutConfirmedEvent so callers can acknowledge and
// ignore them.
func (c *Client) ConfirmWebhook(ctx context.Context, payload []byte, signature string) (registration.PaymentConfirmation, error) {
	if !ValidSignature(c.secretKey, payload, signature) {
		return registration.PaymentConfirmation{}, NewInvalidSignatureError()
	}

	var evt webhookEvent
	err := json.Unmarshal(payload, &evt)
	if err != nil {
		return registration.PaymentConfirmation{}, NewInvalidPayloadError(err)
	}

	if evt.Event != EVENT_CHARGE_SUCCESS {
		c.logger.InfoContext(ctx, "ignoring paystack event", slog.String("event", evt.Event))
		return registration.PaymentConfirmation{}, &payments.Error{Reason: payments.ErrorReasonNotCheckoutConfirmedEvent}
	}

	return evt.Data.confirmation()
}

func ValidSignature(secretKey string, payload []byte, signature string) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expected)
}

// Sign is what Paystack puts in the signature header for payload.
func Sign(secretKey string, payload []byte) string {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) do(ctx context.Context, method string, path string, body any, out interface{ ok() (bool, string) }) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return NewRequestFailedError("Failed to encode request", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return NewRequestFailedError("Failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return NewRequestFailedError(fmt.Sprintf("%s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	err = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out)
	if err != nil {
		return NewRequestFailedError(fmt.Sprintf("Failed to decode %s response", path), err)
	}

	status, message := out.ok()
	if resp.StatusCode >= 300 || !status {
		c.logger.WarnContext(ctx, "paystack rejected request", slog.String("path", path), slog.Int("status", resp.StatusCode), slog.String("message", message))
		return NewRequestRejectedError(message)
	}

	return nil
}

func (e *envelope[T]) ok() (bool, string) {
	return e.Status, e.Message
}
