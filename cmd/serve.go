package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/GHIG-Portal/webinar-registration/access"
	"github.com/GHIG-Portal/webinar-registration/alerts"
	"github.com/GHIG-Portal/webinar-registration/api"
	"github.com/GHIG-Portal/webinar-registration/identity"
	"github.com/GHIG-Portal/webinar-registration/paystack"
	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg Config, logger *slog.Logger) error {
	shutdownTracing, err := setupTracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err := shutdownTracing(context.Background())
		if err != nil {
			logger.Error("failed to flush traces", slog.String("error", err.Error()))
		}
	}()

	awsCfg, err := loadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := newDB(ctx, awsCfg, cfg, logger)
	if err != nil {
		return err
	}

	secretKey, err := paystackSecretKey(ctx, awsCfg, cfg)
	if err != nil {
		return err
	}
	gateway := paystack.NewClient(secretKey, cfg.PaystackCallbackURL, logger)

	alerter, closeAlerter, err := createAlerter(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAlerter()

	verifier, err := identity.NewGoogleVerifier(ctx)
	if err != nil {
		return err
	}

	emailSender := createEmailSender(awsCfg, logger, cfg.Env())

	workflow := registration.NewWorkflow(db, db, gateway, emailSender, cfg.EmailFromAddress, alerter, logger)
	webinarAPI := api.NewAPI(db, workflow, verifier, access.NewVerifier(db, logger), emailSender, logger, cfg.APIConfig())

	handler, err := webinarAPI.Handler()
	if err != nil {
		return err
	}

	s := &http.Server{
		Handler:           handler,
		Addr:              cfg.Addr(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", s.Addr))
		errCh <- s.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return s.Shutdown(shutdownCtx)
}

// createAlerter publishes to RabbitMQ when it is configured and only logs
// otherwise.
func createAlerter(cfg Config, logger *slog.Logger) (registration.Alerter, func(), error) {
	if cfg.RabbitURL == "" {
		return alerts.NewLogAlerter(logger), func() {}, nil
	}

	publisher, err := alerts.NewPublisher(cfg.RabbitURL, cfg.AlertExchange, logger)
	if err != nil {
		return nil, nil, err
	}

	return publisher, func() {
		err := publisher.Close()
		if err != nil {
			logger.Error("failed to close alert publisher", slog.String("error", err.Error()))
		}
	}, nil
}
