package realtime

import "github.com/talenthub-api/internal/domain"

// Event types pushed over the live channel. Only new-message,
// update-unread-count and new-notification have a durable counterpart;
// typing indicators are pure UI hints and may be dropped freely.
const (
	EventNewMessage        = "new-message"
	EventUpdateUnreadCount = "update-unread-count"
	EventNewNotification   = "new-notification"
	EventTyping            = "typing"
	EventStopTyping        = "stop-typing"
)

// Event is one frame pushed to a live session.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// UnreadDelta is the payload of an update-unread-count event. Increment true
// means one more unread from SenderID; false means the count for SenderID was
// reset by a mark-read. Clients treat this as a cache hint and reconcile by
// re-querying the unread-count endpoint.
type UnreadDelta struct {
	SenderID  string `json:"sender_id"`
	Increment bool   `json:"increment"`
}

// TypingHint is the payload of typing / stop-typing events.
type TypingHint struct {
	SenderID string `json:"sender_id"`
}

func NewMessageEvent(m *domain.EnrichedMessage) Event {
	return Event{Type: EventNewMessage, Payload: m}
}

func UnreadCountEvent(senderID string, increment bool) Event {
	return Event{Type: EventUpdateUnreadCount, Payload: UnreadDelta{SenderID: senderID, Increment: increment}}
}

func NewNotificationEvent(n *domain.EnrichedNotification) Event {
	return Event{Type: EventNewNotification, Payload: n}
}

func TypingEvent(senderID string) Event {
	return Event{Type: EventTyping, Payload: TypingHint{SenderID: senderID}}
}

func StopTypingEvent(senderID string) Event {
	return Event{Type: EventStopTyping, Payload: TypingHint{SenderID: senderID}}
}
