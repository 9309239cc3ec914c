package dto

import (
	"time"

	"github.com/spec-kit/campus-market/internal/domain"
)

// UserResponse is the account representation returned to its owner.
type UserResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Department domain.Department `json:"department"`
	Year       int               `json:"year"`
	Skills     []string          `json:"skills"`
	Avatar     string            `json:"avatar,omitempty"`
	Bio        string            `json:"bio,omitempty"`
	Rating     RatingResponse    `json:"rating"`
	CreatedAt  time.Time         `json:"created_at"`
}

// RatingResponse is the denormalized rating aggregate.
type RatingResponse struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// UpdateProfileRequest carries a partial profile update. Email cannot change.
type UpdateProfileRequest struct {
	Name       *string            `json:"name" validate:"omitempty,min=2,max=50"`
	Department *domain.Department `json:"department" validate:"omitempty,department"`
	Year       *int               `json:"year" validate:"omitempty,min=1,max=5"`
	Skills     []string           `json:"skills" validate:"omitempty,dive,min=1,max=50"`
	Avatar     *string            `json:"avatar" validate:"omitempty,max=500"`
	Bio        *string            `json:"bio" validate:"omitempty,max=500"`
}

// UpdateSkillsRequest replaces the skills list wholesale.
type UpdateSkillsRequest struct {
	Skills []string `json:"skills" validate:"dive,min=1,max=50"`
}

// PublicProfileResponse is another user's visible profile.
type PublicProfileResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Department domain.Department `json:"department"`
	Year       int               `json:"year"`
	Skills     []string          `json:"skills"`
	Avatar     string            `json:"avatar,omitempty"`
	Bio        string            `json:"bio,omitempty"`
	Rating     RatingResponse    `json:"rating"`
	Services   []ServiceResponse `json:"services"`
	Completed  CompletedStats    `json:"completed_transactions"`
	CreatedAt  time.Time         `json:"created_at"`
}

// CompletedStats summarizes finished transactions for a profile.
type CompletedStats struct {
	Total    int `json:"total"`
	AsBuyer  int `json:"as_buyer"`
	AsSeller int `json:"as_seller"`
}

// EarningsResponse is the seller's earnings view.
type EarningsResponse struct {
	Total       int64                   `json:"total"`
	Pending     int64                   `json:"pending"`
	RecentSales []CompletedSaleResponse `json:"recent_sales"`
}

// CompletedSaleResponse is one line item in the earnings view.
type CompletedSaleResponse struct {
	ID          string     `json:"id"`
	Amount      int64      `json:"amount"`
	CompletedAt *time.Time `json:"completed_at"`
}
