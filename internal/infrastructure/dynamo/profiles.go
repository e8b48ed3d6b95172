package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/talenthub-api/internal/domain"
)

// ProfileRepo reads the display projection of users maintained by the
// external account service. This subsystem never writes to it.
type ProfileRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProfileRepo(client *dynamodb.Client, tableName string) *ProfileRepo {
	return &ProfileRepo{client: client, tableName: tableName}
}

func (r *ProfileRepo) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var p domain.Profile
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
