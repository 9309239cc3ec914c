package dto

import (
	"time"

	"github.com/spec-kit/campus-market/internal/domain"
)

// SendMessageRequest payload. The receiver comes from the URL path.
type SendMessageRequest struct {
	TransactionID *string `json:"transaction_id" validate:"omitempty,uuid"`
	Content       string  `json:"content" validate:"required,min=1,max=1000"`
}

// MessageResponse is a single delivered message.
type MessageResponse struct {
	ID            string     `json:"id"`
	SenderID      string     `json:"sender_id"`
	ReceiverID    string     `json:"receiver_id"`
	TransactionID *string    `json:"transaction_id,omitempty"`
	Content       string     `json:"content"`
	Read          bool       `json:"read"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ConversationResponse summarizes the thread with one counterparty.
type ConversationResponse struct {
	UserID          string            `json:"user_id"`
	UserName        string            `json:"user_name"`
	UserEmail       string            `json:"user_email"`
	UserDepartment  domain.Department `json:"user_department"`
	LastMessage     string            `json:"last_message"`
	LastMessageTime time.Time         `json:"last_message_time"`
	UnreadCount     int               `json:"unread_count"`
}
