package models

import "time"

// MessageStatus represents the support message statuses matching the ENUM in the DB.
type MessageStatus string

const (
	MessageUnread MessageStatus = "unread"
	MessageRead   MessageStatus = "read"
)

// Message is a support/contact inbox entry submitted via the public contact form.
type Message struct {
	ID        int           `json:"id"`
	Username  string        `json:"username"`
	Email     string        `json:"email"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	Status    MessageStatus `json:"status"`
	UserID    *int          `json:"user_id,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
