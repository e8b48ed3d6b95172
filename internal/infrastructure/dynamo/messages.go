package dynamo

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/talenthub-api/internal/domain"
)

// conversationKey derives the shared partition key for a two-party
// conversation. Order-independent so both directions land in one partition.
func conversationKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return strings.Join(ids, "#")
}

// MessageRepo provides typed DynamoDB operations for the messages table.
type MessageRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewMessageRepo(client *dynamodb.Client, tableName string) *MessageRepo {
	return &MessageRepo{client: client, tableName: tableName}
}

func (r *MessageRepo) Put(ctx context.Context, m *domain.Message) error {
	m.ConversationID = conversationKey(m.SenderID, m.RecipientID)
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListConversation queries the conversation_id-created_at GSI and returns both
// directions of the (userA, userB) exchange ordered by creation time ascending.
func (r *MessageRepo) ListConversation(ctx context.Context, userA, userB string, limit int32) ([]domain.Message, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("conversation_id-created_at-index"),
		KeyConditionExpression: aws.String("conversation_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cid": &types.AttributeValueMemberS{Value: conversationKey(userA, userB)},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	var messages []domain.Message
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Message
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		messages = append(messages, page...)
		if out.LastEvaluatedKey == nil || (limit > 0 && int32(len(messages)) >= limit) {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return messages, nil
}

// CountUnreadBySender aggregates unread messages addressed to recipientID,
// grouped by sender. The grouping happens client-side: DynamoDB has no GROUP
// BY, and the per-recipient unread set is small by construction (it shrinks
// to zero on every conversation open).
func (r *MessageRepo) CountUnreadBySender(ctx context.Context, recipientID string) (map[string]int, error) {
	unread, err := r.queryUnread(ctx, recipientID, nil)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, m := range unread {
		counts[m.SenderID]++
	}
	return counts, nil
}

// MarkRead flips read=false→true on every unread message from senderID to
// recipientID. Single-item updates only; each write is idempotent so a
// partial failure is safe to retry.
func (r *MessageRepo) MarkRead(ctx context.Context, recipientID, senderID string) error {
	unread, err := r.queryUnread(ctx, recipientID, &senderID)
	if err != nil {
		return err
	}
	ue, err := buildUpdateExpr(map[string]interface{}{"read": true})
	if err != nil {
		return err
	}
	for i := range unread {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey("message_id", unread[i].MessageID),
			UpdateExpression:          aws.String(ue.Expr),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		})
		if err != nil {
			return fmt.Errorf("mark message %s read: %w", unread[i].MessageID, err)
		}
	}
	return nil
}

func (r *MessageRepo) queryUnread(ctx context.Context, recipientID string, senderID *string) ([]domain.Message, error) {
	filter := "#r = :false"
	values := map[string]types.AttributeValue{
		":rid":   &types.AttributeValueMemberS{Value: recipientID},
		":false": &types.AttributeValueMemberBOOL{Value: false},
	}
	if senderID != nil {
		filter += " AND sender_id = :sid"
		values[":sid"] = &types.AttributeValueMemberS{Value: *senderID}
	}
	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String("recipient_id-created_at-index"),
		KeyConditionExpression:    aws.String("recipient_id = :rid"),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  map[string]string{"#r": "read"},
		ExpressionAttributeValues: values,
	}
	var messages []domain.Message
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		var page []domain.Message
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		messages = append(messages, page...)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return messages, nil
}
