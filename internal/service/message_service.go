package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/events"
	"github.com/spec-kit/campus-market/internal/repository"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// MessageSendInput describes an outgoing message.
type MessageSendInput struct {
	ReceiverID    string
	TransactionID *string
	Content       string
}

// MessageService coordinates counterparty messaging.
type MessageService struct {
	messages     repository.MessageRepository
	users        repository.UserRepository
	transactions repository.TransactionRepository
	dispatcher   events.Dispatcher
}

// NewMessageService builds the service.
func NewMessageService(messages repository.MessageRepository, users repository.UserRepository, transactions repository.TransactionRepository, dispatcher events.Dispatcher) *MessageService {
	return &MessageService{
		messages:     messages,
		users:        users,
		transactions: transactions,
		dispatcher:   dispatcher,
	}
}

// Send delivers a message to another user, optionally tied to a transaction
// the sender participates in.
func (s *MessageService) Send(ctx context.Context, senderID string, input MessageSendInput) (*domain.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("message content is required", nil)
	}
	if input.ReceiverID == senderID {
		return nil, apperrors.NewValidationError("cannot message yourself", nil)
	}

	if _, err := s.users.GetByID(ctx, input.ReceiverID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": input.ReceiverID})
		}
		return nil, err
	}

	if input.TransactionID != nil {
		tx, err := s.transactions.GetByID(ctx, *input.TransactionID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("transaction", map[string]any{"id": *input.TransactionID})
			}
			return nil, err
		}
		if tx.PartyOf(senderID) == "" {
			return nil, apperrors.NewForbidden("not a party to this transaction")
		}
	}

	msg := &domain.Message{
		SenderID:      senderID,
		ReceiverID:    input.ReceiverID,
		TransactionID: input.TransactionID,
		Content:       content,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.NewEvent(events.EventMessageSent, msg.ID, events.MessageSentPayload{
			Message: msg,
		}))
	}
	return msg, nil
}

// Thread returns the conversation with another user and marks their unread
// messages to the caller as read. Re-fetching the thread is a no-op for
// already-read messages.
func (s *MessageService) Thread(ctx context.Context, userID, otherID string, limit int) ([]domain.Message, error) {
	if _, err := s.users.GetByID(ctx, otherID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": otherID})
		}
		return nil, err
	}

	msgs, err := s.messages.Thread(ctx, userID, otherID, limit)
	if err != nil {
		return nil, err
	}
	if _, err := s.messages.MarkThreadRead(ctx, otherID, userID); err != nil {
		return nil, err
	}
	return msgs, nil
}

// Conversations summarizes the caller's message threads, most recent first.
func (s *MessageService) Conversations(ctx context.Context, userID string) ([]domain.Conversation, error) {
	return s.messages.Conversations(ctx, userID)
}

// MarkRead marks one received message as read.
func (s *MessageService) MarkRead(ctx context.Context, userID, messageID string) (*domain.Message, error) {
	msg, err := s.messages.MarkRead(ctx, messageID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("message", map[string]any{"id": messageID})
		}
		return nil, err
	}
	return msg, nil
}
