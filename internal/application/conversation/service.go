package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/talenthub-api/internal/domain"
	"github.com/talenthub-api/internal/pkg/id"
	"github.com/talenthub-api/internal/realtime"
	"go.uber.org/zap"
)

// conversationPageCap bounds a single conversation listing; histories beyond
// this are truncated to the oldest N entries.
const conversationPageCap = 500

type Service interface {
	SendMessage(ctx context.Context, senderID string, req domain.SendMessageRequest) (*domain.EnrichedMessage, error)
	ListConversation(ctx context.Context, userA, userB string) ([]domain.EnrichedMessage, error)
	MarkRead(ctx context.Context, recipientID, senderID string) error
	UnreadCounts(ctx context.Context, recipientID string, connections []string) (map[string]int, error)
}

type messageStore interface {
	Put(ctx context.Context, m *domain.Message) error
	ListConversation(ctx context.Context, userA, userB string, limit int32) ([]domain.Message, error)
	MarkRead(ctx context.Context, recipientID, senderID string) error
	CountUnreadBySender(ctx context.Context, recipientID string) (map[string]int, error)
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type eventPublisher interface {
	Publish(userID string, ev realtime.Event)
}

type service struct {
	messages   messageStore
	profiles   profileStore
	dispatcher eventPublisher
	log        *zap.Logger
}

type ServiceDeps struct {
	MessageRepo messageStore
	ProfileRepo profileStore
	Dispatcher  eventPublisher
	Logger      *zap.Logger
}

func NewService(deps ServiceDeps) Service {
	return &service{
		messages:   deps.MessageRepo,
		profiles:   deps.ProfileRepo,
		dispatcher: deps.Dispatcher,
		log:        deps.Logger,
	}
}

// SendMessage persists first, dispatches after. A dispatch to an offline
// recipient is a silent success; the durable store is the replay path, so the
// write outcome alone decides whether this call fails.
func (s *service) SendMessage(ctx context.Context, senderID string, req domain.SendMessageRequest) (*domain.EnrichedMessage, error) {
	if req.Content == "" && req.AttachmentURL == "" {
		return nil, fmt.Errorf("message requires content or an attachment: %w", domain.ErrBadRequest)
	}
	sender, err := s.profiles.Get(ctx, senderID)
	if err != nil {
		return nil, fmt.Errorf("sender %s: %w", senderID, err)
	}
	if _, err := s.profiles.Get(ctx, req.RecipientID); err != nil {
		return nil, fmt.Errorf("recipient %s: %w", req.RecipientID, err)
	}

	m := &domain.Message{
		MessageID:     id.New(),
		SenderID:      senderID,
		RecipientID:   req.RecipientID,
		Content:       req.Content,
		AttachmentURL: req.AttachmentURL,
		Read:          false,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.messages.Put(ctx, m); err != nil {
		return nil, fmt.Errorf("store message: %w", err)
	}

	enriched := &domain.EnrichedMessage{Message: *m, Sender: sender}

	// Sender's other open sessions stay in sync too.
	s.dispatcher.Publish(req.RecipientID, realtime.NewMessageEvent(enriched))
	s.dispatcher.Publish(senderID, realtime.NewMessageEvent(enriched))
	if req.RecipientID != senderID {
		s.dispatcher.Publish(req.RecipientID, realtime.UnreadCountEvent(senderID, true))
	}
	return enriched, nil
}

// ListConversation returns both directions of the exchange ordered oldest
// first, each message joined with its sender's display data.
func (s *service) ListConversation(ctx context.Context, userA, userB string) ([]domain.EnrichedMessage, error) {
	messages, err := s.messages.ListConversation(ctx, userA, userB, conversationPageCap)
	if err != nil {
		return nil, fmt.Errorf("list conversation: %w", err)
	}
	return s.enrich(ctx, messages), nil
}

// MarkRead flips every unread message of the (sender → recipient) pair to
// read, then tells the recipient's sessions to reset that sender's badge.
// Idempotent: a second call finds nothing unread and changes nothing.
func (s *service) MarkRead(ctx context.Context, recipientID, senderID string) error {
	if err := s.messages.MarkRead(ctx, recipientID, senderID); err != nil {
		return fmt.Errorf("mark conversation read: %w", err)
	}
	s.dispatcher.Publish(recipientID, realtime.UnreadCountEvent(senderID, false))
	return nil
}

// UnreadCounts recomputes the per-sender unread aggregate from the store.
// Live deltas pushed by SendMessage/MarkRead are only cache hints; this is
// the authoritative view. A non-empty connections set restricts the result
// to those senders; an empty set applies no restriction.
func (s *service) UnreadCounts(ctx context.Context, recipientID string, connections []string) (map[string]int, error) {
	counts, err := s.messages.CountUnreadBySender(ctx, recipientID)
	if err != nil {
		return nil, fmt.Errorf("count unread: %w", err)
	}
	if len(connections) == 0 {
		return counts, nil
	}
	allowed := make(map[string]struct{}, len(connections))
	for _, c := range connections {
		allowed[c] = struct{}{}
	}
	for senderID := range counts {
		if _, ok := allowed[senderID]; !ok {
			delete(counts, senderID)
		}
	}
	return counts, nil
}

// enrich joins messages with sender profiles, one lookup per distinct sender.
// A failed lookup leaves Sender nil rather than failing the listing.
func (s *service) enrich(ctx context.Context, messages []domain.Message) []domain.EnrichedMessage {
	cache := make(map[string]*domain.Profile)
	out := make([]domain.EnrichedMessage, len(messages))
	for i, m := range messages {
		p, ok := cache[m.SenderID]
		if !ok {
			var err error
			p, err = s.profiles.Get(ctx, m.SenderID)
			if err != nil {
				s.log.Warn("profile lookup failed", zap.String("user_id", m.SenderID), zap.Error(err))
				p = nil
			}
			cache[m.SenderID] = p
		}
		out[i] = domain.EnrichedMessage{Message: m, Sender: p}
	}
	return out
}
