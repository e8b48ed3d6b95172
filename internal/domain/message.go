package domain

import "time"

// Message is one direct message between two users. Immutable once stored
// except for the Read flag, which flips false→true exactly once.
type Message struct {
	MessageID      string    `json:"id" dynamodbav:"message_id"`
	ConversationID string    `json:"-" dynamodbav:"conversation_id"`
	SenderID       string    `json:"sender_id" dynamodbav:"sender_id"`
	RecipientID    string    `json:"recipient_id" dynamodbav:"recipient_id"`
	Content        string    `json:"content" dynamodbav:"content"`
	AttachmentURL  string    `json:"attachment_url,omitempty" dynamodbav:"attachment_url"`
	Read           bool      `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time `json:"created_at" dynamodbav:"created_at"`
}

// EnrichedMessage is a Message joined at read time with the sender's
// display data from the profile store. Never persisted.
type EnrichedMessage struct {
	Message
	Sender *Profile `json:"sender,omitempty"`
}
