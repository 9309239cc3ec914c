package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/events"
	"github.com/spec-kit/campus-market/internal/repository"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// TransactionService drives the escrow lifecycle between buyers and sellers.
type TransactionService struct {
	transactions repository.TransactionRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// TransactionDependencies bundles repositories for the transaction service.
type TransactionDependencies struct {
	TransactionRepo repository.TransactionRepository
	ServiceRepo     repository.ServiceRepository
	UserRepo        repository.UserRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// RequestInput describes a buyer's service request.
type RequestInput struct {
	ServiceID    string
	Requirements string
	Deadline     *time.Time
}

// ListInput describes filters for a user's transaction listing.
type ListInput struct {
	Role     *domain.Party
	Statuses []domain.TransactionStatus
	Limit    int
	Offset   int
}

// NewTransactionService constructs the service.
func NewTransactionService(deps TransactionDependencies) *TransactionService {
	return &TransactionService{
		transactions: deps.TransactionRepo,
		services:     deps.ServiceRepo,
		users:        deps.UserRepo,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// Request opens a pending transaction against an active listing. The amount
// and its 25/75 split are fixed from the listing price at this moment and
// never recomputed.
func (s *TransactionService) Request(ctx context.Context, buyerID string, input RequestInput) (*domain.Transaction, error) {
	svc, err := s.services.GetByID(ctx, input.ServiceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"id": input.ServiceID})
		}
		return nil, err
	}
	if svc.Status != domain.ServiceStatusActive {
		return nil, apperrors.NewConflict("service is not accepting requests", map[string]any{
			"status": string(svc.Status),
		})
	}
	if svc.SellerID == buyerID {
		return nil, apperrors.NewValidationError("cannot request your own service", nil)
	}

	tx := domain.NewTransaction(buyerID, svc, strings.TrimSpace(input.Requirements))
	tx.WorkDetails.Deadline = input.Deadline
	if err := s.transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	if err := s.services.IncrementRequestCount(ctx, svc.ID); err != nil {
		s.logger.Warn("request count bump failed", zap.String("service_id", svc.ID), zap.Error(err))
	}
	s.publish(ctx, events.NewEvent(events.EventTransactionRequested, tx.ID, events.TransactionRequestedPayload{
		Transaction: tx,
	}))
	return tx, nil
}

// GetForUser fetches a transaction the caller participates in.
func (s *TransactionService) GetForUser(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	tx, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", map[string]any{"id": txID})
		}
		return nil, err
	}
	if tx.PartyOf(userID) == "" {
		return nil, apperrors.NewForbidden("not a party to this transaction")
	}
	return tx, nil
}

// ListMine returns the caller's transactions, optionally scoped by role and
// status.
func (s *TransactionService) ListMine(ctx context.Context, userID string, input ListInput) ([]domain.Transaction, error) {
	return s.transactions.ListWithFilter(ctx, repository.TransactionFilter{
		UserID:   userID,
		Role:     input.Role,
		Statuses: input.Statuses,
		Limit:    input.Limit,
		Offset:   input.Offset,
	})
}

// Accept moves a pending request to accepted. Seller only.
func (s *TransactionService) Accept(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	return s.transition(ctx, userID, txID, domain.ActionAccept, nil)
}

// PayAdvance records the 25% escrow installment. Buyer only.
func (s *TransactionService) PayAdvance(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	return s.transition(ctx, userID, txID, domain.ActionAdvancePaid, nil)
}

// CompleteWork records the seller's delivery.
func (s *TransactionService) CompleteWork(ctx context.Context, userID, txID string, deliverables []string) (*domain.Transaction, error) {
	if deliverables == nil {
		deliverables = []string{}
	}
	return s.transition(ctx, userID, txID, domain.ActionWorkCompleted, deliverables)
}

// PayFinal records the 75% installment. Buyer only.
func (s *TransactionService) PayFinal(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	return s.transition(ctx, userID, txID, domain.ActionFinalPaid, nil)
}

// Complete closes a fully paid transaction. Either party.
func (s *TransactionService) Complete(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	return s.transition(ctx, userID, txID, domain.ActionComplete, nil)
}

// Cancel aborts a transaction before any money has moved. Either party.
func (s *TransactionService) Cancel(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	return s.transition(ctx, userID, txID, domain.ActionCancel, nil)
}

// Dispute freezes a transaction after money has moved. Either party.
func (s *TransactionService) Dispute(ctx context.Context, userID, txID string) (*domain.Transaction, error) {
	return s.transition(ctx, userID, txID, domain.ActionDispute, nil)
}

// transition resolves the lifecycle rule, performs the conditional update,
// and applies post-commit side effects. A transaction the caller is not a
// party to is reported as not found.
func (s *TransactionService) transition(ctx context.Context, userID, txID string, action domain.TransitionAction, deliverables []string) (*domain.Transaction, error) {
	current, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", map[string]any{"id": txID})
		}
		return nil, err
	}

	party := current.PartyOf(userID)
	if party == "" {
		return nil, apperrors.NewNotFound("transaction", map[string]any{"id": txID})
	}

	next, err := domain.NextStatus(current.Status, action, party)
	if err != nil {
		return nil, apperrors.NewConflict("action not allowed in current status", map[string]any{
			"action": string(action),
			"status": string(current.Status),
		})
	}

	actor := domain.RequiredActor(action)
	params := repository.TransitionParams{
		ID:      txID,
		ActorID: userID,
		Actor:   actor,
		From:    current.Status,
		To:      next,
	}
	switch action {
	case domain.ActionAdvancePaid:
		params.MarkAdvancePaid = true
	case domain.ActionWorkCompleted:
		params.Deliverables = deliverables
	case domain.ActionFinalPaid:
		params.MarkFinalPaid = true
	case domain.ActionComplete:
		params.SetCompletedAt = true
	}

	updated, err := s.transactions.Transition(ctx, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// a concurrent actor won the row; the expected prior status is gone
			return nil, apperrors.NewConflict("transaction changed concurrently", map[string]any{
				"expected_status": string(current.Status),
			})
		}
		return nil, err
	}

	s.applyEarnings(ctx, action, updated)
	s.publish(ctx, events.NewEvent(events.EventTransactionStatusChanged, updated.ID, events.TransactionStatusChangedPayload{
		Transaction: updated,
		From:        current.Status,
		To:          updated.Status,
		ActorID:     userID,
	}))
	return updated, nil
}

// applyEarnings credits the seller's aggregate after a payment transition.
// The escrow row is already committed; a failed increment is logged and left
// for reconciliation instead of failing the request.
func (s *TransactionService) applyEarnings(ctx context.Context, action domain.TransitionAction, tx *domain.Transaction) {
	var pendingDelta, totalDelta int64
	switch action {
	case domain.ActionAdvancePaid:
		pendingDelta = tx.Payment.Advance.Amount
	case domain.ActionFinalPaid:
		pendingDelta = -tx.Payment.Advance.Amount
		totalDelta = tx.Amount
	default:
		return
	}
	if err := s.users.AddEarnings(ctx, tx.SellerID, pendingDelta, totalDelta); err != nil {
		s.logger.Error("earnings update failed",
			zap.String("transaction_id", tx.ID),
			zap.String("seller_id", tx.SellerID),
			zap.Int64("pending_delta", pendingDelta),
			zap.Int64("total_delta", totalDelta),
			zap.Error(err),
		)
	}
}

// SubmitRating stores the caller's rating of the counterparty. rated names
// the side being rated: only the buyer may rate the seller and only the
// seller may rate the buyer. Each side rates at most once, after the final
// installment is paid. Buyer-authored ratings feed the seller's and the
// listing's denormalized averages.
func (s *TransactionService) SubmitRating(ctx context.Context, userID, txID string, rated domain.Party, rating int, review string) (*domain.Transaction, error) {
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{
			"rating": rating,
		})
	}

	tx, err := s.transactions.GetByID(ctx, txID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("transaction", map[string]any{"id": txID})
		}
		return nil, err
	}
	if rated != domain.PartyBuyer && rated != domain.PartySeller {
		return nil, apperrors.NewValidationError("rated role must be buyer or seller", nil)
	}
	party := tx.PartyOf(userID)
	if party == "" {
		return nil, apperrors.NewForbidden("not a party to this transaction")
	}
	author := domain.PartyBuyer
	if rated == domain.PartyBuyer {
		author = domain.PartySeller
	}
	if party != author {
		return nil, apperrors.NewForbidden("only the " + string(author) + " can rate the " + string(rated))
	}
	if tx.Status != domain.TransactionStatusFinalPaid && tx.Status != domain.TransactionStatusCompleted {
		return nil, apperrors.NewConflict("transaction is not ratable yet", map[string]any{
			"status": string(tx.Status),
		})
	}
	if (party == domain.PartyBuyer && tx.BuyerRating != nil) ||
		(party == domain.PartySeller && tx.SellerRating != nil) {
		return nil, apperrors.NewConflict("already rated", nil)
	}

	entry := domain.RatingEntry{Rating: rating, Review: strings.TrimSpace(review)}
	updated, err := s.transactions.SetRating(ctx, txID, userID, party, entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewConflict("transaction is not ratable yet", nil)
		}
		return nil, err
	}

	if party == domain.PartyBuyer {
		s.recomputeSellerAggregates(ctx, updated)
	}
	s.publish(ctx, events.NewEvent(events.EventTransactionRated, updated.ID, events.TransactionRatedPayload{
		Transaction: updated,
		AuthorID:    userID,
		Rating:      rating,
	}))
	return updated, nil
}

// recomputeSellerAggregates rescans buyer-authored ratings and overwrites the
// seller's and the listing's stored averages.
func (s *TransactionService) recomputeSellerAggregates(ctx context.Context, tx *domain.Transaction) {
	average, count, err := s.transactions.SellerRatingStats(ctx, tx.SellerID)
	if err != nil {
		s.logger.Error("seller rating rescan failed", zap.String("seller_id", tx.SellerID), zap.Error(err))
		return
	}
	if err := s.users.SetRating(ctx, tx.SellerID, average, count); err != nil {
		s.logger.Error("seller rating write failed", zap.String("seller_id", tx.SellerID), zap.Error(err))
	}

	svcAverage, _, err := s.transactions.ServiceRatingStats(ctx, tx.ServiceID)
	if err != nil {
		s.logger.Error("service rating rescan failed", zap.String("service_id", tx.ServiceID), zap.Error(err))
		return
	}
	if err := s.services.SetAverageRating(ctx, tx.ServiceID, svcAverage); err != nil {
		s.logger.Error("service rating write failed", zap.String("service_id", tx.ServiceID), zap.Error(err))
	}
}

func (s *TransactionService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
