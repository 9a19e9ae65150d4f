package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/GHIG-Portal/webinar-registration/dynamo"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func loadAWSConfig(ctx context.Context, cfg Config) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}
	if cfg.DynamoEndpoint != "" {
		opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to get aws config: %w", err)
	}

	return awsCfg, nil
}

// newDB connects to the table. Against DynamoDB Local the table is created
// on first start.
func newDB(ctx context.Context, awsCfg aws.Config, cfg Config, logger *slog.Logger) (*dynamo.DB, error) {
	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})

	if cfg.DynamoEndpoint != "" {
		err := dynamo.CreateTable(ctx, client, cfg.DynamoTableName)
		var inUse *types.ResourceInUseException
		if err != nil && !errors.As(err, &inUse) {
			return nil, fmt.Errorf("failed to create local table: %w", err)
		}
		if err == nil {
			logger.Info("created local table", slog.String("table", cfg.DynamoTableName))
		}
	}

	return dynamo.NewDB(client, cfg.DynamoTableName), nil
}
