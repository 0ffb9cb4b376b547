// Package domain defines the core data types shared across juniorbot.
package domain

import "time"

// Sender identifies who authored a message in a conversation.
type Sender string

const (
	SenderCustomer Sender = "customer"
	SenderBot      Sender = "bot"
)

// Status is the lifecycle state of a conversation.
type Status string

const (
	StatusActive Status = "active"
	StatusClosed Status = "closed"
)

// Message is a single immutable entry in a conversation transcript.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the durable transcript for one WhatsApp contact.
// There is at most one conversation per phone number; messages are
// insertion-ordered and never reordered.
type Conversation struct {
	ID        string    `json:"id"`
	Customer  string    `json:"customer"`
	Phone     string    `json:"phone"`
	Messages  []Message `json:"messages"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
