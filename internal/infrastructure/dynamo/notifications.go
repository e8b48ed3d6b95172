package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/talenthub-api/internal/domain"
)

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNotificationRepo(client *dynamodb.Client, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByRecipient queries the recipient_id-created_at GSI newest-first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("recipient_id-created_at-index"),
		KeyConditionExpression: aws.String("recipient_id = :rid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid": &types.AttributeValueMemberS{Value: recipientID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	var notifications []domain.Notification
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		notifications = append(notifications, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return notifications, nil
}

// CountUnread returns the number of unread notifications for recipientID.
func (r *NotificationRepo) CountUnread(ctx context.Context, recipientID string) (int, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String("recipient_id-created_at-index"),
		KeyConditionExpression:   aws.String("recipient_id = :rid"),
		FilterExpression:         aws.String("#r = :false"),
		ExpressionAttributeNames: map[string]string{"#r": "read"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":rid":   &types.AttributeValueMemberS{Value: recipientID},
			":false": &types.AttributeValueMemberBOOL{Value: false},
		},
		Select: types.SelectCount,
	}
	count := 0
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return 0, err
		}
		count += int(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return count, nil
}

// SetRead flips the read flag on a single notification and returns the
// updated record.
func (r *NotificationRepo) SetRead(ctx context.Context, notificationID string, read bool) (*domain.Notification, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{"read": read})
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("notification_id", notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(notification_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
		}
		return nil, err
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Attributes, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkAllRead bulk-flips every unread notification for recipientID.
// Per-item updates; each is idempotent.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, recipientID string) error {
	notifications, err := r.ListByRecipient(ctx, recipientID)
	if err != nil {
		return err
	}
	for i := range notifications {
		if notifications[i].Read {
			continue
		}
		if _, err := r.SetRead(ctx, notifications[i].NotificationID, true); err != nil {
			return err
		}
	}
	return nil
}
