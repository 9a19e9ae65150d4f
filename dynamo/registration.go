package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GHIG-Portal/webinar-registration/registration"
	"github.com/GHIG-Portal/webinar-registration/slices"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

var _ registration.Repository = &DB{}

type registrationDynamo struct {
	PK     string
	SK     string
	GSI1PK string
	GSI1SK string
	GSI2PK string
	GSI2SK string

	ID               uuid.UUID
	Surname          string
	OtherNames       string
	Email            string
	Phone            string
	PriceOption      registration.PriceOption
	Role             registration.ParticipationRole
	PinCode          string
	PaymentReference string
	CreatedAt        time.Time
}

const (
	registrationEntityName = "REGISTRATION"
	emailIndexEntityName   = "EMAIL"

	scanTimeout = 5 * time.Second
)

// Paid registrations are keyed by payment reference so the same payment can
// never be registered twice. Free ones have no reference and use their ID.
func registrationPK(reg registration.Registration) string {
	if reg.PaymentReference != "" {
		return paidRegistrationPK(reg.PaymentReference)
	}
	return fmt.Sprintf("%s#FREE#%s", registrationEntityName, reg.ID)
}

func paidRegistrationPK(reference string) string {
	return fmt.Sprintf("%s#%s", registrationEntityName, reference)
}

func registrationSK() string {
	return registrationEntityName
}

func registrationTimeSK(reg registration.Registration) string {
	return fmt.Sprintf("%s#%s#%s", registrationEntityName, reg.CreatedAt.UTC().Format(time.RFC3339Nano), reg.ID)
}

func emailPK(email string) string {
	return fmt.Sprintf("%s#%s", emailIndexEntityName, strings.ToLower(strings.TrimSpace(email)))
}

func registrationToDynamo(reg registration.Registration) registrationDynamo {
	return registrationDynamo{
		PK:               registrationPK(reg),
		SK:               registrationSK(),
		GSI1PK:           registrationEntityName,
		GSI1SK:           registrationTimeSK(reg),
		GSI2PK:           emailPK(reg.Email),
		GSI2SK:           registrationTimeSK(reg),
		ID:               reg.ID,
		Surname:          reg.Surname,
		OtherNames:       reg.OtherNames,
		Email:            reg.Email,
		Phone:            reg.Phone,
		PriceOption:      reg.PriceOption,
		Role:             reg.Role,
		PinCode:          reg.PinCode,
		PaymentReference: reg.PaymentReference,
		CreatedAt:        reg.CreatedAt,
	}
}

func dynamoToRegistration(dynReg registrationDynamo) registration.Registration {
	return registration.Registration{
		ID:               dynReg.ID,
		Surname:          dynReg.Surname,
		OtherNames:       dynReg.OtherNames,
		Email:            dynReg.Email,
		Phone:            dynReg.Phone,
		PriceOption:      dynReg.PriceOption,
		Role:             dynReg.Role,
		PinCode:          dynReg.PinCode,
		PaymentReference: dynReg.PaymentReference,
		CreatedAt:        dynReg.CreatedAt,
	}
}

func (d *DB) CreateRegistration(ctx context.Context, reg registration.Registration) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	dynamoReg := registrationToDynamo(reg)

	item, err := attributevalue.MarshalMap(dynamoReg)
	if err != nil {
		return registration.NewFailedToTranslateToDBModelError("Failed to translate registration to dynamo model", err)
	}
	expr := exprMustBuild(expression.NewBuilder().WithCondition(newEntityConditional()))

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
			return registration.NewRegistrationAlreadyExistsError(fmt.Sprintf("Registration for payment %q already exists", reg.PaymentReference), err)
		} else if errors.Is(err, context.DeadlineExceeded) {
			return registration.NewTimeoutError("CreateRegistration timed out")
		} else {
			return registration.NewFailedToWriteError("Failed PutItem call", err)
		}
	}

	return nil
}

func (d *DB) GetRegistrationByPaymentReference(ctx context.Context, reference string) (registration.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: paidRegistrationPK(reference)},
			"SK": &types.AttributeValueMemberS{Value: registrationSK()},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.Registration{}, registration.NewTimeoutError("GetRegistrationByPaymentReference timed out")
		}
		return registration.Registration{}, registration.NewFailedToFetchError(fmt.Sprintf("Failed to fetch registration for payment %q", reference), err)
	}

	if len(resp.Item) == 0 {
		return registration.Registration{}, registration.NewRegistrationDoesNotExistsError(fmt.Sprintf("Registration for payment %q not found", reference), nil)
	}

	var dynReg registrationDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &dynReg)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal registration from dynamo: %s", err))
	}

	return dynamoToRegistration(dynReg), nil
}

func (d *DB) GetRegistrationsByEmail(ctx context.Context, email string) ([]registration.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("GSI2PK").Equal(expression.Value(emailPK(email)))

	items, err := d.queryAll(ctx, gsi2, keyCond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, registration.NewTimeoutError("GetRegistrationsByEmail timed out")
		}
		return nil, registration.NewFailedToFetchError("Failed to fetch registrations by email", err)
	}

	return items, nil
}

// GetAllRegistrations returns every registration, oldest first.
func (d *DB) GetAllRegistrations(ctx context.Context) ([]registration.Registration, error) {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(registrationEntityName))

	items, err := d.queryAll(ctx, gsi1, keyCond)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, registration.NewTimeoutError("GetAllRegistrations timed out")
		}
		return nil, registration.NewFailedToFetchError("Failed to fetch registrations from dynamo", err)
	}

	return items, nil
}

func (d *DB) queryAll(ctx context.Context, index string, keyCond expression.KeyConditionBuilder) ([]registration.Registration, error) {
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	paginator := dynamodb.NewQueryPaginator(d.dynamoClient, &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	result := []registration.Registration{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}

		var dynamoItems []registrationDynamo
		err = attributevalue.UnmarshalListOfMaps(page.Items, &dynamoItems)
		if err != nil {
			panic(fmt.Sprintf("failed to unmarshal dynamo registrations: %s", err))
		}

		result = append(result, slices.Map(dynamoItems, dynamoToRegistration)...)
	}

	return result, nil
}

func (d *DB) ListRegistrations(ctx context.Context, limit int32, cursor *string) (registration.GetAllRegistrationsResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	keyCond := expression.Key("GSI1PK").Equal(expression.Value(registrationEntityName))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build dynamo key expression: %s", err))
	}

	var startKey map[string]types.AttributeValue
	if cursor != nil {
		startKey, err = decodeCursor(*cursor)
		if err != nil {
			return registration.GetAllRegistrationsResponse{}, registration.NewInvalidCursorError("Invalid cursor", err)
		}
	}

	result, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(d.tableName),
		IndexName:                 aws.String(gsi1),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		// Fetch 1 more than limit to check if there is another page or not
		Limit:             aws.Int32(limit + 1),
		ExclusiveStartKey: startKey,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return registration.GetAllRegistrationsResponse{}, registration.NewTimeoutError("ListRegistrations timed out")
		}
		return registration.GetAllRegistrationsResponse{}, registration.NewFailedToFetchError("Failed to fetch registrations from dynamo", err)
	}

	var dynamoItems []registrationDynamo
	err = attributevalue.UnmarshalListOfMaps(result.Items, &dynamoItems)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal dynamo registrations: %s", err))
	}

	hasNextPage := len(dynamoItems) > int(limit)

	var newCursor *string
	if hasNextPage && len(result.LastEvaluatedKey) > 0 {
		// Can't use LastEvalKey directly because we grabbed an extra item to check for next page
		lastItemGivenToUser := result.Items[len(result.Items)-2]
		lastItemKey := keyOf(result.LastEvaluatedKey, lastItemGivenToUser)
		c, err := encodeCursor(lastItemKey)
		if err != nil {
			panic(fmt.Sprintf("failed to make cursor from lastEvalKey: %s", err))
		}
		newCursor = &c
	}

	return registration.GetAllRegistrationsResponse{
		Data:        slices.Map(dynamoItems, dynamoToRegistration)[:min(int(limit), len(dynamoItems))],
		Cursor:      newCursor,
		HasNextPage: hasNextPage,
	}, nil
}
