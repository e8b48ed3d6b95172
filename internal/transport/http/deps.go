package http

import (
	"context"
	"io"

	"github.com/talenthub-api/internal/domain"
)

// MessageRepository is the minimal interface the router requires from a message store.
type MessageRepository interface {
	Put(ctx context.Context, m *domain.Message) error
	ListConversation(ctx context.Context, userA, userB string, limit int32) ([]domain.Message, error)
	MarkRead(ctx context.Context, recipientID, senderID string) error
	CountUnreadBySender(ctx context.Context, recipientID string) (map[string]int, error)
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	SetRead(ctx context.Context, notificationID string, read bool) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) error
}

// ProfileRepository is the minimal interface the router requires from the profile store.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}
