package domain

import "time"

// MaxMessageLen caps message content length.
const MaxMessageLen = 1000

// Message is a directed message between two users, optionally tied to a
// transaction. Content is immutable once created; only the receiver may flip
// the read flag.
type Message struct {
	ID            string
	SenderID      string
	ReceiverID    string
	TransactionID *string
	Content       string
	Read          bool
	ReadAt        *time.Time
	CreatedAt     time.Time
}

// Conversation is the derived summary of all messages exchanged with one
// counterparty. It is never stored.
type Conversation struct {
	UserID          string
	UserName        string
	UserEmail       string
	UserDepartment  Department
	LastMessage     string
	LastMessageTime time.Time
	UnreadCount     int
}
