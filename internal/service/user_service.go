package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/repository"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// ProfileUpdateInput carries a partial profile update; nil fields stay
// untouched. Email is immutable after registration.
type ProfileUpdateInput struct {
	Name       *string
	Department *domain.Department
	Year       *int
	Skills     []string
	Avatar     *string
	Bio        *string
}

// PublicProfile is another user's visible profile.
type PublicProfile struct {
	User      *domain.User
	Services  []domain.Service
	Completed repository.CompletedStats
}

// EarningsSummary is the seller's earnings view.
type EarningsSummary struct {
	Total       int64
	Pending     int64
	RecentSales []repository.CompletedSale
}

// UserService coordinates profile and earnings workflows.
type UserService struct {
	users        repository.UserRepository
	services     repository.ServiceRepository
	transactions repository.TransactionRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, services repository.ServiceRepository, transactions repository.TransactionRepository) *UserService {
	return &UserService{
		users:        users,
		services:     services,
		transactions: transactions,
	}
}

// Profile returns the caller's own account.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileUpdateInput) (*domain.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name cannot be empty", nil)
		}
		user.Name = name
	}
	if input.Department != nil {
		if !domain.ValidDepartment(*input.Department) {
			return nil, apperrors.NewValidationError("unknown department", map[string]any{
				"department": string(*input.Department),
			})
		}
		user.Department = *input.Department
	}
	if input.Year != nil {
		user.Year = *input.Year
	}
	if input.Skills != nil {
		user.Skills = normalizeSkills(input.Skills)
	}
	if input.Avatar != nil {
		user.Avatar = *input.Avatar
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}

// UpdateSkills replaces the caller's skills list.
func (s *UserService) UpdateSkills(ctx context.Context, userID string, skills []string) (*domain.User, error) {
	user, err := s.users.UpdateSkills(ctx, userID, normalizeSkills(skills))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
		}
		return nil, err
	}
	return user, nil
}

// GetPublicProfile returns another user's profile together with their active
// listings and completed-transaction counts.
func (s *UserService) GetPublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	active := domain.ServiceStatusActive
	services, err := s.services.ListWithFilter(ctx, repository.ServiceFilter{
		SellerID: &userID,
		Status:   &active,
		SortBy:   "createdAt",
		SortDesc: true,
		Limit:    50,
	})
	if err != nil {
		return nil, err
	}

	stats, err := s.transactions.CompletedStatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{
		User:      user,
		Services:  services,
		Completed: stats,
	}, nil
}

// Earnings returns the caller's earnings aggregate with recent completed
// sales.
func (s *UserService) Earnings(ctx context.Context, userID string) (*EarningsSummary, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	sales, err := s.transactions.RecentCompletedSales(ctx, userID, 5)
	if err != nil {
		return nil, err
	}
	return &EarningsSummary{
		Total:       user.Earnings.Total,
		Pending:     user.Earnings.Pending,
		RecentSales: sales,
	}, nil
}
