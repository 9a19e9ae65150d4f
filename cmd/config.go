package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"strings"

	"github.com/GHIG-Portal/webinar-registration/api"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"LOCAL"`
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	Port        string `envconfig:"PORT" default:"8080"`

	AWSRegion       string `envconfig:"AWS_REGION" default:"us-east-1"`
	DynamoTableName string `envconfig:"DYNAMO_TABLE_NAME" default:"WebinarRegistration"`
	// DynamoEndpoint points at DynamoDB Local during development.
	DynamoEndpoint string `envconfig:"DYNAMO_ENDPOINT"`

	GoogleClientID         string `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	PaystackPublicKey      string `envconfig:"PAYSTACK_PUBLIC_KEY"`
	PaystackSecretKey      string `envconfig:"PAYSTACK_SECRET_KEY"`
	PaystackSecretKeyParam string `envconfig:"PAYSTACK_SECRET_KEY_PARAM"`
	PaystackCallbackURL    string `envconfig:"PAYSTACK_CALLBACK_URL"`

	EmailFromAddress string `envconfig:"EMAIL_FROM_ADDRESS" default:"noreply@webinar.local"`
	CookieDomain     string `envconfig:"COOKIE_DOMAIN" default:"localhost"`
	AllowedOrigin    string `envconfig:"ALLOWED_ORIGIN" default:"http://localhost:3000"`

	RabbitURL     string `envconfig:"RABBIT_URL"`
	AlertExchange string `envconfig:"ALERT_EXCHANGE" default:"webinar.alerts"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// loadConfig reads .env when present and then the process environment,
// which wins over the file.
func loadConfig() (Config, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var c Config
	err = envconfig.Process("", &c)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config from env: %w", err)
	}

	return c, nil
}

func (c Config) Env() api.Environment {
	if strings.EqualFold(c.Environment, "PROD") {
		return api.PROD
	}
	return api.LOCAL
}

func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c Config) APIConfig() api.Config {
	return api.Config{
		Env:               c.Env(),
		GoogleClientID:    c.GoogleClientID,
		PaystackPublicKey: c.PaystackPublicKey,
		EmailFromAddress:  c.EmailFromAddress,
		CookieDomain:      c.CookieDomain,
		AllowedOrigin:     c.AllowedOrigin,
	}
}
