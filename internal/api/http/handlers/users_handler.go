package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/dto"
	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/service"
	appvalidator "github.com/spec-kit/campus-market/internal/validator"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// UsersHandler manages profile, skills, and earnings endpoints.
type UsersHandler struct {
	users        *service.UserService
	transactions *service.TransactionService
	validate     *appvalidator.Validator
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService, transactions *service.TransactionService, validate *appvalidator.Validator) *UsersHandler {
	return &UsersHandler{users: users, transactions: transactions, validate: validate}
}

// Me GET /auth/profile.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// UpdateMe PUT /auth/profile.
func (h *UsersHandler) UpdateMe(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	updated, err := h.users.UpdateProfile(c.UserContext(), user.ID, service.ProfileUpdateInput{
		Name:       req.Name,
		Department: req.Department,
		Year:       req.Year,
		Skills:     req.Skills,
		Avatar:     req.Avatar,
		Bio:        req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(updated)})
}

// UpdateSkills PUT /users/skills.
func (h *UsersHandler) UpdateSkills(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateSkillsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	updated, err := h.users.UpdateSkills(c.UserContext(), user.ID, req.Skills)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(updated)})
}

// PublicProfile GET /users/:id.
func (h *UsersHandler) PublicProfile(c *fiber.Ctx) error {
	profile, err := h.users.GetPublicProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": publicProfileResponse(profile)})
}

// Transactions GET /users/:id/transactions. Transaction history is private;
// the path ID must be the caller's own.
func (h *UsersHandler) Transactions(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if c.Params("id") != user.ID {
		return apperrors.NewForbidden("cannot view another user's transactions")
	}

	txs, err := h.transactions.ListMine(c.UserContext(), user.ID, service.ListInput{Limit: 50})
	if err != nil {
		return err
	}
	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, transactionResponse(&txs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Earnings GET /users/earnings.
func (h *UsersHandler) Earnings(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	summary, err := h.users.Earnings(c.UserContext(), user.ID)
	if err != nil {
		return err
	}

	sales := make([]dto.CompletedSaleResponse, 0, len(summary.RecentSales))
	for _, sale := range summary.RecentSales {
		sales = append(sales, dto.CompletedSaleResponse{
			ID:          sale.ID,
			Amount:      sale.Amount,
			CompletedAt: sale.CompletedAt,
		})
	}
	return c.JSON(fiber.Map{"data": dto.EarningsResponse{
		Total:       summary.Total,
		Pending:     summary.Pending,
		RecentSales: sales,
	}})
}

func publicProfileResponse(profile *service.PublicProfile) dto.PublicProfileResponse {
	user := profile.User
	services := make([]dto.ServiceResponse, 0, len(profile.Services))
	for i := range profile.Services {
		services = append(services, serviceResponse(&profile.Services[i]))
	}
	return dto.PublicProfileResponse{
		ID:         user.ID,
		Name:       user.Name,
		Department: user.Department,
		Year:       user.Year,
		Skills:     user.Skills,
		Avatar:     user.Avatar,
		Bio:        user.Bio,
		Rating: dto.RatingResponse{
			Average: user.Rating.Average,
			Count:   user.Rating.Count,
		},
		Services: services,
		Completed: dto.CompletedStats{
			Total:    profile.Completed.Total,
			AsBuyer:  profile.Completed.AsBuyer,
			AsSeller: profile.Completed.AsSeller,
		},
		CreatedAt: user.CreatedAt,
	}
}
