package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/talenthub-api/internal/domain"
	"github.com/talenthub-api/internal/pkg/id"
	"github.com/talenthub-api/internal/realtime"
	"go.uber.org/zap"
)

type Service interface {
	Notify(ctx context.Context, recipientID, senderID, message, notifType string) (*domain.Notification, error)
	List(ctx context.Context, recipientID string) ([]domain.EnrichedNotification, error)
	UnreadCount(ctx context.Context, recipientID string) (int, error)
	MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error)
	MarkUnread(ctx context.Context, notificationID string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID string) ([]domain.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int, error)
	SetRead(ctx context.Context, notificationID string, read bool) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) error
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type eventPublisher interface {
	Publish(userID string, ev realtime.Event)
}

type service struct {
	notifications notificationStore
	profiles      profileStore
	dispatcher    eventPublisher
	log           *zap.Logger
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	ProfileRepo      profileStore
	Dispatcher       eventPublisher
	Logger           *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	return &service{
		notifications: deps.NotificationRepo,
		profiles:      deps.ProfileRepo,
		dispatcher:    deps.Dispatcher,
		log:           deps.Logger,
	}
}

// Notify persists the notification and then pushes it to the recipient's live
// sessions. SenderID is empty for system-generated events. Callers treat an
// error here as logged-and-swallowed: the triggering business action must
// never fail because its notification could not be handled.
func (s *service) Notify(ctx context.Context, recipientID, senderID, message, notifType string) (*domain.Notification, error) {
	if recipientID == "" || message == "" {
		return nil, fmt.Errorf("notification requires a recipient and a message: %w", domain.ErrBadRequest)
	}
	if !domain.ValidNotificationType(notifType) {
		return nil, fmt.Errorf("unknown notification type %q: %w", notifType, domain.ErrBadRequest)
	}

	n := &domain.Notification{
		NotificationID: id.New(),
		RecipientID:    recipientID,
		SenderID:       senderID,
		Message:        message,
		Type:           notifType,
		Read:           false,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		return nil, fmt.Errorf("store notification: %w", err)
	}

	enriched := &domain.EnrichedNotification{Notification: *n}
	if senderID != "" {
		p, err := s.profiles.Get(ctx, senderID)
		if err != nil {
			s.log.Warn("profile lookup failed", zap.String("user_id", senderID), zap.Error(err))
		} else {
			enriched.Sender = p
		}
	}
	s.dispatcher.Publish(recipientID, realtime.NewNotificationEvent(enriched))
	return n, nil
}

// List returns the recipient's notifications newest first, joined with sender
// display data where a sender exists.
func (s *service) List(ctx context.Context, recipientID string) ([]domain.EnrichedNotification, error) {
	notifications, err := s.notifications.ListByRecipient(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	cache := make(map[string]*domain.Profile)
	out := make([]domain.EnrichedNotification, len(notifications))
	for i, n := range notifications {
		out[i] = domain.EnrichedNotification{Notification: n}
		if n.SenderID == "" {
			continue
		}
		p, ok := cache[n.SenderID]
		if !ok {
			var err error
			p, err = s.profiles.Get(ctx, n.SenderID)
			if err != nil {
				s.log.Warn("profile lookup failed", zap.String("user_id", n.SenderID), zap.Error(err))
				p = nil
			}
			cache[n.SenderID] = p
		}
		out[i].Sender = p
	}
	return out, nil
}

func (s *service) UnreadCount(ctx context.Context, recipientID string) (int, error) {
	return s.notifications.CountUnread(ctx, recipientID)
}

// MarkRead and MarkUnread flip the flag by notification id alone. No
// recipient-ownership check is performed; any caller holding an id can flip
// it (see DESIGN.md).
func (s *service) MarkRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return s.notifications.SetRead(ctx, notificationID, true)
}

func (s *service) MarkUnread(ctx context.Context, notificationID string) (*domain.Notification, error) {
	return s.notifications.SetRead(ctx, notificationID, false)
}

func (s *service) MarkAllRead(ctx context.Context, recipientID string) error {
	return s.notifications.MarkAllRead(ctx, recipientID)
}
