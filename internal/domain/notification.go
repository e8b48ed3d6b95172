package domain

import "time"

// Notification types emitted by the platform workflows.
const (
	NotificationConnectionRequest  = "connection_request"
	NotificationConnectionAccepted = "connection_accepted"
	NotificationApplicationStatus  = "application_status"
)

// Notification is one discrete event delivered to a recipient's inbox.
// SenderID is empty for system-generated events. Unlike messages, the Read
// flag may be flipped back to unread.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	RecipientID    string    `json:"recipient_id" dynamodbav:"recipient_id"`
	SenderID       string    `json:"sender_id,omitempty" dynamodbav:"sender_id"`
	Message        string    `json:"message" dynamodbav:"message"`
	Type           string    `json:"type" dynamodbav:"type"`
	Read           bool      `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
}

// ValidNotificationType reports whether t is one of the known types.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationConnectionRequest, NotificationConnectionAccepted, NotificationApplicationStatus:
		return true
	}
	return false
}

// EnrichedNotification is a Notification joined at read time with the
// sender's display data. Never persisted.
type EnrichedNotification struct {
	Notification
	Sender *Profile `json:"sender,omitempty"`
}
