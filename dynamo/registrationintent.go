package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/Rhymond/go-money"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var _ registration.IntentRepository = &DB{}

type registrationIntentDynamo struct {
	PK             string
	SK             string
	Version        int
	Reference      string
	Surname        string
	OtherNames     string
	Email          string
	Phone          string
	PriceOption    registration.PriceOption
	Role           registration.ParticipationRole
	AmountMinor    int64
	AmountCurrency string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	// TTL is the epoch-seconds attribute DynamoDB expires the item on.
	TTL int64
}

const (
	registrationIntentEntityName = "REG_INTENT"
)

func registrationIntentPK(reference string) string {
	return fmt.Sprintf("%s#%s", registrationIntentEntityName, reference)
}

func registrationIntentSK() string {
	return registrationIntentEntityName
}

func regIntentToDynamo(regIntent registration.RegistrationIntent) registrationIntentDynamo {
	return registrationIntentDynamo{
		PK:             registrationIntentPK(regIntent.Reference),
		SK:             registrationIntentSK(),
		Version:        regIntent.Version,
		Reference:      regIntent.Reference,
		Surname:        regIntent.Form.Surname,
		OtherNames:     regIntent.Form.OtherNames,
		Email:          regIntent.Form.Email,
		Phone:          regIntent.Form.Phone,
		PriceOption:    regIntent.Form.PriceOption,
		Role:           regIntent.Form.Role,
		AmountMinor:    regIntent.Amount.Amount(),
		AmountCurrency: regIntent.Amount.Currency().Code,
		CreatedAt:      regIntent.CreatedAt,
		ExpiresAt:      regIntent.ExpiresAt,
		TTL:            regIntent.ExpiresAt.Unix(),
	}
}

func dynamoRegIntentToRegIntent(regIntent registrationIntentDynamo) registration.RegistrationIntent {
	return registration.RegistrationIntent{
		Version:   regIntent.Version,
		Reference: regIntent.Reference,
		Form: registration.Form{
			Surname:     regIntent.Surname,
			OtherNames:  regIntent.OtherNames,
			Email:       regIntent.Email,
			Phone:       regIntent.Phone,
			PriceOption: regIntent.PriceOption,
			Role:        regIntent.Role,
		},
		Amount:    money.New(regIntent.AmountMinor, regIntent.AmountCurrency),
		CreatedAt: regIntent.CreatedAt,
		ExpiresAt: regIntent.ExpiresAt,
	}
}

func (d *DB) CreateRegistrationIntent(ctx context.Context, regIntent registration.RegistrationIntent) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	item, err := attributevalue.MarshalMap(regIntentToDynamo(regIntent))
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to translate registration intent to dynamo model", err)
	}
	expr := exprMustBuild(expression.NewBuilder().
		WithCondition(newEntityVersionConditional(regIntent.Version)))

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(d.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var condFailedErr *types.ConditionalCheckFailedException
		if errors.As(err, &condFailedErr) {
			return registration.NewRegistrationAlreadyExistsError(fmt.Sprintf("Registration intent %q already exists", regIntent.Reference), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("CreateRegistrationIntent timed out")
		} else {
			return registration.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

func (d *DB) GetRegistrationIntent(ctx context.Context, reference string) (registration.RegistrationIntent, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: registrationIntentPK(reference)},
			"SK": &types.AttributeValueMemberS{Value: registrationIntentSK()},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.RegistrationIntent{}, registration.NewTimeoutError("GetRegistrationIntent timed out")
		}
		return registration.RegistrationIntent{}, registration.NewFailedToFetchError(fmt.Sprintf("Failed to fetch registration intent %q", reference), err)
	}

	if len(resp.Item) == 0 {
		return registration.RegistrationIntent{}, registration.NewRegistrationDoesNotExistsError(fmt.Sprintf("RegistrationIntent %q not found", reference), nil)
	}

	var reg registrationIntentDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &reg)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal registrationIntent from DB: %s", err))
	}
	return dynamoRegIntentToRegIntent(reg), nil
}

// DeleteRegistrationIntent succeeds when the intent is already gone.
func (d *DB) DeleteRegistrationIntent(ctx context.Context, reference string) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	_, err := d.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: registrationIntentPK(reference)},
			"SK": &types.AttributeValueMemberS{Value: registrationIntentSK()},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("DeleteRegistrationIntent timed out")
		}
		return registration.NewFailedToWriteError("Failed DeleteItem call", err)
	}

	return nil
}
