package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/config"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/repository"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// RegisterInput describes the registration payload.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Department domain.Department
	Year       int
	Skills     []string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	tokenMgr    *auth.TokenManager
	bcryptCost  int
	emailDomain string
}

// NewAuthService builds the service.
func NewAuthService(cfg *config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:       users,
		tokenMgr:    auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:  cfg.Auth.BcryptCost,
		emailDomain: cfg.Campus.EmailDomain,
	}
}

// Register creates a new student account scoped to the campus email domain.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.HasSuffix(email, "@"+s.emailDomain) {
		return nil, "", time.Time{}, apperrors.NewValidationError("registration requires an institutional email", map[string]any{
			"email": "must end with @" + s.emailDomain,
		})
	}
	if !domain.ValidDepartment(input.Department) {
		return nil, "", time.Time{}, apperrors.NewValidationError("unknown department", map[string]any{
			"department": string(input.Department),
		})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	skills := normalizeSkills(input.Skills)

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		Department:   input.Department,
		Year:         input.Year,
		Skills:       skills,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, err
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Login authenticates a student by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, exp, nil
}

// Logout currently no-ops for stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// normalizeSkills trims entries, drops blanks, and enforces the per-user cap.
func normalizeSkills(skills []string) []string {
	cleaned := make([]string, 0, len(skills))
	for _, skill := range skills {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		cleaned = append(cleaned, skill)
	}
	// overflow is truncated, not rejected
	if len(cleaned) > domain.MaxSkills {
		cleaned = cleaned[:domain.MaxSkills]
	}
	return cleaned
}
