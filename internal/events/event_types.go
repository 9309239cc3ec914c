package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/campus-market/internal/domain"
)

// EventType identifies an event category.
type EventType string

const (
	EventTransactionRequested     EventType = "transaction.requested"
	EventTransactionStatusChanged EventType = "transaction.status_changed"
	EventTransactionRated         EventType = "transaction.rated"
	EventMessageSent              EventType = "message.sent"
)

// Event is the envelope published through the dispatcher.
type Event struct {
	ID         string
	Type       EventType
	EntityID   string
	OccurredAt time.Time
	Payload    any
}

// TransactionRequestedPayload carries a newly requested transaction.
type TransactionRequestedPayload struct {
	Transaction *domain.Transaction
}

// TransactionStatusChangedPayload carries a lifecycle transition.
type TransactionStatusChangedPayload struct {
	Transaction *domain.Transaction
	From        domain.TransactionStatus
	To          domain.TransactionStatus
	ActorID     string
}

// TransactionRatedPayload carries a submitted rating.
type TransactionRatedPayload struct {
	Transaction *domain.Transaction
	AuthorID    string
	Rating      int
}

// MessageSentPayload carries a delivered message.
type MessageSentPayload struct {
	Message *domain.Message
}

// NewEvent wraps a payload into an event envelope.
func NewEvent(eventType EventType, entityID string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}
