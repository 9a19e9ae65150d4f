package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// paystackSecretKey prefers the plain env value and falls back to the SSM
// parameter in deployed environments.
func paystackSecretKey(ctx context.Context, awsCfg aws.Config, cfg Config) (string, error) {
	if cfg.PaystackSecretKey != "" {
		return cfg.PaystackSecretKey, nil
	}
	if cfg.PaystackSecretKeyParam == "" {
		return "", fmt.Errorf("one of PAYSTACK_SECRET_KEY or PAYSTACK_SECRET_KEY_PARAM must be set")
	}

	return getSecureParameter(ctx, ssm.NewFromConfig(awsCfg), cfg.PaystackSecretKeyParam)
}

func getSecureParameter(ctx context.Context, client *ssm.Client, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %q: %w", name, err)
	}

	return aws.ToString(out.Parameter.Value), nil
}
