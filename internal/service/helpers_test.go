package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/repository"
)

// In-memory repositories mirroring the conditional-update semantics of the
// Postgres implementations, so lifecycle races and ownership checks behave
// the same under test.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name = user.Name
	stored.Department = user.Department
	stored.Year = user.Year
	stored.Skills = user.Skills
	stored.Avatar = user.Avatar
	stored.Bio = user.Bio
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.Email == email {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) UpdateSkills(_ context.Context, id string, skills []string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	stored.Skills = skills
	clone := *stored
	return &clone, nil
}

func (r *fakeUserRepo) AddEarnings(_ context.Context, id string, pendingDelta, totalDelta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Earnings.Pending += pendingDelta
	stored.Earnings.Total += totalDelta
	return nil
}

func (r *fakeUserRepo) SetRating(_ context.Context, id string, average float64, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Rating.Average = average
	stored.Rating.Count = count
	return nil
}

type fakeServiceRepo struct {
	mu       sync.Mutex
	services map[string]*domain.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: map[string]*domain.Service{}}
}

func (r *fakeServiceRepo) Create(_ context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	svc.ID = uuid.NewString()
	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	clone := *svc
	r.services[svc.ID] = &clone
	return nil
}

func (r *fakeServiceRepo) UpdateOwned(_ context.Context, svc *domain.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.services[svc.ID]
	if !ok || stored.SellerID != svc.SellerID {
		return pgx.ErrNoRows
	}
	stored.Title = svc.Title
	stored.Description = svc.Description
	stored.Price = svc.Price
	stored.DeliveryDays = svc.DeliveryDays
	stored.Status = svc.Status
	stored.Tags = svc.Tags
	return nil
}

func (r *fakeServiceRepo) DeleteOwned(_ context.Context, id, sellerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.services[id]
	if !ok || stored.SellerID != sellerID {
		return pgx.ErrNoRows
	}
	delete(r.services, id)
	return nil
}

func (r *fakeServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeServiceRepo) matches(svc *domain.Service, filter repository.ServiceFilter) bool {
	if filter.SellerID != nil && svc.SellerID != *filter.SellerID {
		return false
	}
	if filter.Status != nil && svc.Status != *filter.Status {
		return false
	}
	if filter.Category != nil && svc.Category != *filter.Category {
		return false
	}
	if filter.MinPrice != nil && svc.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && svc.Price > *filter.MaxPrice {
		return false
	}
	if filter.SearchTerm != nil {
		term := strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
		if term != "" && !strings.Contains(strings.ToLower(svc.Title), term) &&
			!strings.Contains(strings.ToLower(svc.Description), term) {
			return false
		}
	}
	return true
}

func (r *fakeServiceRepo) ListWithFilter(_ context.Context, filter repository.ServiceFilter) ([]domain.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Service
	for _, stored := range r.services {
		if r.matches(stored, filter) {
			result = append(result, *stored)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset > len(result) {
		offset = len(result)
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (r *fakeServiceRepo) CountWithFilter(_ context.Context, filter repository.ServiceFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, stored := range r.services {
		if r.matches(stored, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeServiceRepo) IncrementRequestCount(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.services[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.RequestCount++
	return nil
}

func (r *fakeServiceRepo) SetAverageRating(_ context.Context, id string, average float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.services[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.AverageRating = average
	return nil
}

type fakeTransactionRepo struct {
	mu           sync.Mutex
	transactions map[string]*domain.Transaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{transactions: map[string]*domain.Transaction{}}
}

func (r *fakeTransactionRepo) Create(_ context.Context, tx *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx.ID = uuid.NewString()
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	clone := cloneTransaction(tx)
	r.transactions[tx.ID] = clone
	return nil
}

func (r *fakeTransactionRepo) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transactions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return cloneTransaction(stored), nil
}

func (r *fakeTransactionRepo) ListWithFilter(_ context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Transaction
	for _, stored := range r.transactions {
		switch {
		case filter.Role != nil && *filter.Role == domain.PartyBuyer:
			if stored.BuyerID != filter.UserID {
				continue
			}
		case filter.Role != nil && *filter.Role == domain.PartySeller:
			if stored.SellerID != filter.UserID {
				continue
			}
		default:
			if stored.BuyerID != filter.UserID && stored.SellerID != filter.UserID {
				continue
			}
		}
		if len(filter.Statuses) > 0 {
			found := false
			for _, status := range filter.Statuses {
				if stored.Status == status {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		result = append(result, *cloneTransaction(stored))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeTransactionRepo) Transition(_ context.Context, params repository.TransitionParams) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transactions[params.ID]
	if !ok || stored.Status != params.From {
		return nil, pgx.ErrNoRows
	}
	switch params.Actor {
	case domain.PartyBuyer:
		if stored.BuyerID != params.ActorID {
			return nil, pgx.ErrNoRows
		}
	case domain.PartySeller:
		if stored.SellerID != params.ActorID {
			return nil, pgx.ErrNoRows
		}
	default:
		if stored.BuyerID != params.ActorID && stored.SellerID != params.ActorID {
			return nil, pgx.ErrNoRows
		}
	}

	now := time.Now()
	stored.Status = params.To
	stored.UpdatedAt = now
	if params.MarkAdvancePaid {
		stored.Payment.Advance.Paid = true
		stored.Payment.Advance.PaidAt = &now
	}
	if params.MarkFinalPaid {
		stored.Payment.Final.Paid = true
		stored.Payment.Final.PaidAt = &now
	}
	if params.Deliverables != nil {
		stored.WorkDetails.Deliverables = params.Deliverables
		stored.WorkDetails.SubmittedAt = &now
	}
	if params.SetCompletedAt {
		stored.CompletedAt = &now
	}
	return cloneTransaction(stored), nil
}

func (r *fakeTransactionRepo) SetRating(_ context.Context, id, authorID string, author domain.Party, entry domain.RatingEntry) (*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.transactions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if stored.Status != domain.TransactionStatusFinalPaid && stored.Status != domain.TransactionStatusCompleted {
		return nil, pgx.ErrNoRows
	}
	entry.RatedAt = time.Now()
	switch author {
	case domain.PartyBuyer:
		if stored.BuyerID != authorID {
			return nil, pgx.ErrNoRows
		}
		stored.BuyerRating = &entry
	case domain.PartySeller:
		if stored.SellerID != authorID {
			return nil, pgx.ErrNoRows
		}
		stored.SellerRating = &entry
	default:
		return nil, pgx.ErrNoRows
	}
	return cloneTransaction(stored), nil
}

func (r *fakeTransactionRepo) SellerRatingStats(_ context.Context, sellerID string) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, count := 0, 0
	for _, stored := range r.transactions {
		if stored.SellerID == sellerID && stored.BuyerRating != nil {
			sum += stored.BuyerRating.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (r *fakeTransactionRepo) ServiceRatingStats(_ context.Context, serviceID string) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum, count := 0, 0
	for _, stored := range r.transactions {
		if stored.ServiceID == serviceID && stored.BuyerRating != nil {
			sum += stored.BuyerRating.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (r *fakeTransactionRepo) CompletedStatsForUser(_ context.Context, userID string) (repository.CompletedStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var stats repository.CompletedStats
	for _, stored := range r.transactions {
		if stored.Status != domain.TransactionStatusCompleted {
			continue
		}
		if stored.BuyerID == userID {
			stats.Total++
			stats.AsBuyer++
		} else if stored.SellerID == userID {
			stats.Total++
			stats.AsSeller++
		}
	}
	return stats, nil
}

func (r *fakeTransactionRepo) RecentCompletedSales(_ context.Context, sellerID string, limit int) ([]repository.CompletedSale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 5
	}
	var sales []repository.CompletedSale
	for _, stored := range r.transactions {
		if stored.SellerID == sellerID && stored.Status == domain.TransactionStatusCompleted {
			sales = append(sales, repository.CompletedSale{
				ID:          stored.ID,
				Amount:      stored.Amount,
				CompletedAt: stored.CompletedAt,
			})
		}
	}
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

// transitionTo builds params that force a transaction straight to the given
// status, bypassing the lifecycle. Test setup only.
func transitionTo(tx *domain.Transaction, to domain.TransactionStatus, actorID string) repository.TransitionParams {
	return repository.TransitionParams{
		ID:             tx.ID,
		ActorID:        actorID,
		Actor:          domain.PartyAny,
		From:           tx.Status,
		To:             to,
		SetCompletedAt: to == domain.TransactionStatusCompleted,
	}
}

func cloneTransaction(tx *domain.Transaction) *domain.Transaction {
	clone := *tx
	if tx.BuyerRating != nil {
		entry := *tx.BuyerRating
		clone.BuyerRating = &entry
	}
	if tx.SellerRating != nil {
		entry := *tx.SellerRating
		clone.SellerRating = &entry
	}
	return &clone
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = uuid.NewString()
	msg.CreatedAt = time.Now()
	clone := *msg
	r.messages = append(r.messages, &clone)
	return nil
}

func (r *fakeMessageRepo) Thread(_ context.Context, userA, userB string, limit int) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 100
	}
	var result []domain.Message
	for _, stored := range r.messages {
		between := (stored.SenderID == userA && stored.ReceiverID == userB) ||
			(stored.SenderID == userB && stored.ReceiverID == userA)
		if between {
			result = append(result, *stored)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *fakeMessageRepo) MarkThreadRead(_ context.Context, senderID, receiverID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var affected int64
	now := time.Now()
	for _, stored := range r.messages {
		if stored.SenderID == senderID && stored.ReceiverID == receiverID && !stored.Read {
			stored.Read = true
			stored.ReadAt = &now
			affected++
		}
	}
	return affected, nil
}

func (r *fakeMessageRepo) MarkRead(_ context.Context, messageID, receiverID string) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.messages {
		if stored.ID == messageID && stored.ReceiverID == receiverID {
			stored.Read = true
			if stored.ReadAt == nil {
				now := time.Now()
				stored.ReadAt = &now
			}
			clone := *stored
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeMessageRepo) Conversations(_ context.Context, userID string) ([]domain.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := map[string]*domain.Message{}
	unread := map[string]int{}
	for _, stored := range r.messages {
		var other string
		switch userID {
		case stored.SenderID:
			other = stored.ReceiverID
		case stored.ReceiverID:
			other = stored.SenderID
		default:
			continue
		}
		if current, ok := latest[other]; !ok || stored.CreatedAt.After(current.CreatedAt) {
			latest[other] = stored
		}
		if stored.ReceiverID == userID && !stored.Read {
			unread[other]++
		}
	}

	var result []domain.Conversation
	for other, msg := range latest {
		result = append(result, domain.Conversation{
			UserID:          other,
			LastMessage:     msg.Content,
			LastMessageTime: msg.CreatedAt,
			UnreadCount:     unread[other],
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LastMessageTime.After(result[j].LastMessageTime)
	})
	return result, nil
}
