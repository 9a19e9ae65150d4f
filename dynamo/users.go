package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GHIG-Portal/webinar-registration/roles"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var _ roles.Repository = &DB{}

type userRoleDynamo struct {
	PK        string
	SK        string
	Email     string
	Role      string
	UpdatedAt time.Time
}

const (
	userEntityName = "USER"
)

func userPK(email string) string {
	return fmt.Sprintf("%s#%s", userEntityName, roles.NormalizeEmail(email))
}

func userSK() string {
	return userEntityName
}

func (d *DB) GetUserRole(ctx context.Context, email string) (roles.UserRole, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	resp, err := d.dynamoClient.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userPK(email)},
			"SK": &types.AttributeValueMemberS{Value: userSK()},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return roles.UserRole{}, roles.NewTimeoutError("GetUserRole timed out")
		}
		return roles.UserRole{}, roles.NewFailedToFetchError(fmt.Sprintf("Failed to fetch user role for %s", email), err)
	}

	if len(resp.Item) == 0 {
		return roles.UserRole{}, roles.NewUserDoesNotExistError(email)
	}

	var user userRoleDynamo
	err = attributevalue.UnmarshalMap(resp.Item, &user)
	if err != nil {
		panic(fmt.Sprintf("failed to unmarshal user role from dynamo: %s", err))
	}

	return roles.UserRole{Email: user.Email, Role: user.Role}, nil
}

// PutUserRole creates or replaces the role granted to an email.
func (d *DB) PutUserRole(ctx context.Context, role roles.UserRole) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	item, err := attributevalue.MarshalMap(userRoleDynamo{
		PK:        userPK(role.Email),
		SK:        userSK(),
		Email:     roles.NormalizeEmail(role.Email),
		Role:      role.Role,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return roles.NewFailedToWriteError("Failed to translate user role to dynamo model", err)
	}

	_, err = d.dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return roles.NewTimeoutError("PutUserRole timed out")
		}
		return roles.NewFailedToWriteError("Failed PutItem call", err)
	}

	return nil
}
