package dto

import (
	"time"

	"github.com/spec-kit/campus-market/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name       string            `json:"name" validate:"required,min=2,max=50"`
	Email      string            `json:"email" validate:"required,email,campus_email"`
	Password   string            `json:"password" validate:"required,min=6,max=72"`
	Department domain.Department `json:"department" validate:"required,department"`
	Year       int               `json:"year" validate:"required,min=1,max=5"`
	Skills     []string          `json:"skills" validate:"omitempty,dive,min=1,max=50"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse carries the issued token and the account it belongs to.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
