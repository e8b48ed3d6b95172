package domain

// SendMessageRequest is the payload for POST /messages. Content may be empty
// only when an attachment URL is supplied.
type SendMessageRequest struct {
	RecipientID   string `json:"recipient_id" validate:"required"`
	Content       string `json:"content"`
	AttachmentURL string `json:"attachment_url"`
}

// ConnectionEventRequest is the payload for the connection-request and
// connection-accept notification triggers.
type ConnectionEventRequest struct {
	SenderID    string `json:"sender_id" validate:"required"`
	RecipientID string `json:"recipient_id" validate:"required"`
}

// ApplicationStatusRequest is the payload for the application-status
// notification trigger.
type ApplicationStatusRequest struct {
	RecipientID string `json:"recipient_id" validate:"required"`
	Message     string `json:"message" validate:"required"`
}
