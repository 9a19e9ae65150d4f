package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/GHIG-Portal/webinar-registration/paystack"
	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/International-Combat-Archery-Alliance/middleware"
	"github.com/International-Combat-Archery-Alliance/payments"
)

// paystackWebhookMiddleware serves the gateway webhook ahead of request
// validation, since the signature has to be checked against the raw body.
func (a *API) paystackWebhookMiddleware(path string) middleware.MiddlewareFunc {
	server := http.NewServeMux()

	server.HandleFunc("POST "+path, func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		logger := a.getLoggerOrBaseLogger(ctx)

		r.Body = http.MaxBytesReader(w, r.Body, 65536)
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			logger.Error("Failed to read paystack webhook body", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		attempt, err := a.workflow.ConfirmFromWebhook(ctx, payload, r.Header.Get(paystack.SignatureHeader))
		if err != nil {
			w.WriteHeader(webhookStatus(logger, err))
			return
		}

		logger.Info("registration confirmed from webhook", slog.String("reference", attempt.Reference), slog.String("state", attempt.State.String()))
		w.WriteHeader(http.StatusOK)
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler, matchedPath := server.Handler(r)

			if matchedPath == "" {
				next.ServeHTTP(w, r)
				return
			}

			handler.ServeHTTP(w, r)
		})
	}
}

// webhookStatus only answers with an error status when a retry from the
// gateway could succeed. Everything else was already alerted on.
func webhookStatus(logger *slog.Logger, err error) int {
	var paymentsErr *payments.Error
	if errors.As(err, &paymentsErr) && paymentsErr.Reason == payments.ErrorReasonNotCheckoutConfirmedEvent {
		return http.StatusOK
	}

	var paystackErr *paystack.Error
	if errors.As(err, &paystackErr) {
		logger.Warn("Rejected paystack webhook", slog.String("error", err.Error()))
		return http.StatusBadRequest
	}

	var regErr *registration.Error
	if errors.As(err, &regErr) {
		switch regErr.Reason {
		case registration.REASON_FAILED_TO_SEND_EMAIL,
			registration.REASON_PAYMENT_NOT_CONFIRMED,
			registration.REASON_REGISTRATION_DOES_NOT_EXIST:
			logger.Error("Paystack webhook did not complete a registration", slog.String("error", err.Error()))
			return http.StatusOK
		}
	}

	logger.Error("Failed to confirm registration payment", slog.String("error", err.Error()))
	return http.StatusInternalServerError
}
