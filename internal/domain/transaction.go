package domain

import (
	"errors"
	"time"
)

// TransactionStatus enumerates lifecycle states for transactions.
type TransactionStatus string

const (
	TransactionStatusPending       TransactionStatus = "pending"
	TransactionStatusAccepted      TransactionStatus = "accepted"
	TransactionStatusAdvancePaid   TransactionStatus = "advance_paid"
	TransactionStatusWorkCompleted TransactionStatus = "work_completed"
	TransactionStatusFinalPaid     TransactionStatus = "final_paid"
	TransactionStatusCompleted     TransactionStatus = "completed"
	TransactionStatusCancelled     TransactionStatus = "cancelled"
	TransactionStatusDisputed      TransactionStatus = "disputed"
)

// ValidTransactionStatus reports whether s is a known lifecycle state.
func ValidTransactionStatus(s TransactionStatus) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusAccepted, TransactionStatusAdvancePaid,
		TransactionStatusWorkCompleted, TransactionStatusFinalPaid, TransactionStatusCompleted,
		TransactionStatusCancelled, TransactionStatusDisputed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition leaves s.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusCancelled || s == TransactionStatusDisputed
}

// Party identifies which side of a transaction an actor is on.
type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
	// PartyAny marks transitions either counterparty may perform.
	PartyAny Party = "any"
)

// TransitionAction names the operations that move a transaction forward.
type TransitionAction string

const (
	ActionAccept        TransitionAction = "accept"
	ActionAdvancePaid   TransitionAction = "advance_paid"
	ActionWorkCompleted TransitionAction = "work_completed"
	ActionFinalPaid     TransitionAction = "final_paid"
	ActionComplete      TransitionAction = "complete"
	ActionCancel        TransitionAction = "cancel"
	ActionDispute       TransitionAction = "dispute"
)

// ErrTransitionNotAllowed is returned when the action, actor, or current
// state does not match the transition table.
var ErrTransitionNotAllowed = errors.New("transition not allowed")

type transitionRule struct {
	actor Party
	from  []TransactionStatus
	to    TransactionStatus
}

// transitions is the single source of truth for the lifecycle:
// (action, acting party, prior status) -> next status. Cancelling is only
// possible before any money has moved; disputes only after.
var transitions = map[TransitionAction]transitionRule{
	ActionAccept: {
		actor: PartySeller,
		from:  []TransactionStatus{TransactionStatusPending},
		to:    TransactionStatusAccepted,
	},
	ActionAdvancePaid: {
		actor: PartyBuyer,
		from:  []TransactionStatus{TransactionStatusAccepted},
		to:    TransactionStatusAdvancePaid,
	},
	ActionWorkCompleted: {
		actor: PartySeller,
		from:  []TransactionStatus{TransactionStatusAdvancePaid},
		to:    TransactionStatusWorkCompleted,
	},
	ActionFinalPaid: {
		actor: PartyBuyer,
		from:  []TransactionStatus{TransactionStatusWorkCompleted},
		to:    TransactionStatusFinalPaid,
	},
	ActionComplete: {
		actor: PartyAny,
		from:  []TransactionStatus{TransactionStatusFinalPaid},
		to:    TransactionStatusCompleted,
	},
	ActionCancel: {
		actor: PartyAny,
		from:  []TransactionStatus{TransactionStatusPending, TransactionStatusAccepted},
		to:    TransactionStatusCancelled,
	},
	ActionDispute: {
		actor: PartyAny,
		from: []TransactionStatus{
			TransactionStatusAdvancePaid,
			TransactionStatusWorkCompleted,
			TransactionStatusFinalPaid,
		},
		to: TransactionStatusDisputed,
	},
}

// NextStatus resolves the target status for an action performed by the given
// party from the current status. It returns ErrTransitionNotAllowed when the
// action is unknown, the party does not match, or the current status is not
// an accepted prior state.
func NextStatus(current TransactionStatus, action TransitionAction, actor Party) (TransactionStatus, error) {
	rule, ok := transitions[action]
	if !ok {
		return "", ErrTransitionNotAllowed
	}
	if rule.actor != PartyAny && rule.actor != actor {
		return "", ErrTransitionNotAllowed
	}
	for _, allowed := range rule.from {
		if allowed == current {
			return rule.to, nil
		}
	}
	return "", ErrTransitionNotAllowed
}

// RequiredActor returns the party a transition demands, or PartyAny.
func RequiredActor(action TransitionAction) Party {
	return transitions[action].actor
}

// PaymentLeg records one of the two escrow installments.
type PaymentLeg struct {
	Paid   bool
	Amount int64
	PaidAt *time.Time
}

// Payment is the two-phase payment sub-record of a transaction.
type Payment struct {
	Advance     PaymentLeg
	Final       PaymentLeg
	PlatformFee int64
}

// WorkDetails captures the buyer's requirements and the seller's delivery.
type WorkDetails struct {
	Requirements string
	Deliverables []string
	Deadline     *time.Time
	SubmittedAt  *time.Time
}

// RatingEntry is a single counterparty rating on a transaction.
type RatingEntry struct {
	Rating  int
	Review  string
	RatedAt time.Time
}

// Transaction is the escrow aggregate between a buyer and a seller.
type Transaction struct {
	ID           string
	BuyerID      string
	SellerID     string
	ServiceID    string
	Amount       int64
	Status       TransactionStatus
	Payment      Payment
	WorkDetails  WorkDetails
	BuyerRating  *RatingEntry
	SellerRating *RatingEntry
	CompletedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PartyOf returns which side of the transaction userID is on, or "" when the
// user is not a counterparty.
func (t *Transaction) PartyOf(userID string) Party {
	switch userID {
	case t.BuyerID:
		return PartyBuyer
	case t.SellerID:
		return PartySeller
	}
	return ""
}

// SplitPayment divides amount into the 25% advance and 75% final legs.
// Amounts are integer currency units; the advance floors on division so the
// two legs always sum back to the full amount.
func SplitPayment(amount int64) (advance, final int64) {
	advance = amount / 4
	final = amount - advance
	return advance, final
}

// NewTransaction builds a pending transaction for a service request. The
// amount is copied from the service price and never changes afterwards.
func NewTransaction(buyerID string, svc *Service, requirements string) *Transaction {
	advance, final := SplitPayment(svc.Price)
	return &Transaction{
		BuyerID:   buyerID,
		SellerID:  svc.SellerID,
		ServiceID: svc.ID,
		Amount:    svc.Price,
		Status:    TransactionStatusPending,
		Payment: Payment{
			Advance: PaymentLeg{Amount: advance},
			Final:   PaymentLeg{Amount: final},
		},
		WorkDetails: WorkDetails{Requirements: requirements},
	}
}
