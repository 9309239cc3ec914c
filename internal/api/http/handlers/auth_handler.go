package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/dto"
	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/service"
	appvalidator "github.com/spec-kit/campus-market/internal/validator"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// AuthHandler manages registration, login, and logout endpoints.
type AuthHandler struct {
	service  *service.AuthService
	validate *appvalidator.Validator
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, validate *appvalidator.Validator) *AuthHandler {
	return &AuthHandler{service: authService, validate: validate}
}

// Register POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	user, token, exp, err := h.service.Register(c.UserContext(), service.RegisterInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Department: req.Department,
		Year:       req.Year,
		Skills:     req.Skills,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	}})
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	user, token, exp, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: exp,
		User:      userResponse(user),
	}})
}

// Logout POST /auth/logout.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.service.Logout(c.UserContext(), user.ID); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"logged_out": true}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Department: user.Department,
		Year:       user.Year,
		Skills:     user.Skills,
		Avatar:     user.Avatar,
		Bio:        user.Bio,
		Rating: dto.RatingResponse{
			Average: user.Rating.Average,
			Count:   user.Rating.Count,
		},
		CreatedAt: user.CreatedAt,
	}
}
