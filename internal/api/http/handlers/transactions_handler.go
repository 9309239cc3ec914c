package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/campus-market/internal/api/dto"
	"github.com/spec-kit/campus-market/internal/auth"
	"github.com/spec-kit/campus-market/internal/domain"
	"github.com/spec-kit/campus-market/internal/service"
	appvalidator "github.com/spec-kit/campus-market/internal/validator"
	apperrors "github.com/spec-kit/campus-market/pkg/util"
)

// TransactionsHandler manages the escrow lifecycle endpoints.
type TransactionsHandler struct {
	transactions *service.TransactionService
	validate     *appvalidator.Validator
}

// NewTransactionsHandler constructs handler.
func NewTransactionsHandler(transactions *service.TransactionService, validate *appvalidator.Validator) *TransactionsHandler {
	return &TransactionsHandler{transactions: transactions, validate: validate}
}

// Request POST /services/request.
func (h *TransactionsHandler) Request(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RequestServiceRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	tx, err := h.transactions.Request(c.UserContext(), user.ID, service.RequestInput{
		ServiceID:    req.ServiceID,
		Requirements: req.Requirements,
		Deadline:     req.Deadline,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": transactionResponse(tx)})
}

// List GET /transactions/my-transactions.
func (h *TransactionsHandler) List(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	input := service.ListInput{
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("limit"), 20),
	}
	switch c.Query("role") {
	case "buyer":
		role := domain.PartyBuyer
		input.Role = &role
	case "seller":
		role := domain.PartySeller
		input.Role = &role
	case "":
	default:
		return apperrors.NewValidationError("role must be buyer or seller", nil)
	}
	if raw := c.Query("status"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.TransactionStatus(strings.TrimSpace(part))
			if !domain.ValidTransactionStatus(status) {
				return apperrors.NewValidationError("unknown status", map[string]any{"status": string(status)})
			}
			input.Statuses = append(input.Statuses, status)
		}
	}

	txs, err := h.transactions.ListMine(c.UserContext(), user.ID, input)
	if err != nil {
		return err
	}
	items := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, transactionResponse(&txs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /transactions/:id.
func (h *TransactionsHandler) Get(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tx, err := h.transactions.GetForUser(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transactionResponse(tx)})
}

// Accept PUT /transactions/:id/accept.
func (h *TransactionsHandler) Accept(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.transactions.Accept)
}

// PayAdvance PUT /transactions/:id/advance-paid.
func (h *TransactionsHandler) PayAdvance(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.transactions.PayAdvance)
}

// CompleteWork PUT /transactions/:id/work-completed.
func (h *TransactionsHandler) CompleteWork(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CompleteWorkRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("invalid payload", nil)
		}
		if err := h.validate.Validate(req); err != nil {
			return err
		}
	}
	tx, err := h.transactions.CompleteWork(c.UserContext(), user.ID, c.Params("id"), req.Deliverables)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transactionResponse(tx)})
}

// PayFinal PUT /transactions/:id/final-paid.
func (h *TransactionsHandler) PayFinal(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.transactions.PayFinal)
}

// Complete PUT /transactions/:id/complete.
func (h *TransactionsHandler) Complete(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.transactions.Complete)
}

// Cancel PUT /transactions/:id/cancel.
func (h *TransactionsHandler) Cancel(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.transactions.Cancel)
}

// Dispute PUT /transactions/:id/dispute.
func (h *TransactionsHandler) Dispute(c *fiber.Ctx) error {
	return h.simpleTransition(c, h.transactions.Dispute)
}

// Rate POST /transactions/:id/rate/:role. The role segment names the side
// being rated: a buyer rates the seller via rate/seller and vice versa.
func (h *TransactionsHandler) Rate(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var rated domain.Party
	switch c.Params("role") {
	case "buyer":
		rated = domain.PartyBuyer
	case "seller":
		rated = domain.PartySeller
	default:
		return apperrors.NewValidationError("role must be buyer or seller", nil)
	}

	var req dto.RateTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}
	tx, err := h.transactions.SubmitRating(c.UserContext(), user.ID, c.Params("id"), rated, req.Rating, req.Review)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transactionResponse(tx)})
}

func (h *TransactionsHandler) simpleTransition(c *fiber.Ctx, fn func(ctx context.Context, userID, txID string) (*domain.Transaction, error)) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tx, err := fn(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": transactionResponse(tx)})
}

func transactionResponse(tx *domain.Transaction) dto.TransactionResponse {
	resp := dto.TransactionResponse{
		ID:        tx.ID,
		BuyerID:   tx.BuyerID,
		SellerID:  tx.SellerID,
		ServiceID: tx.ServiceID,
		Amount:    tx.Amount,
		Status:    tx.Status,
		Payment: dto.PaymentResponse{
			Advance: dto.PaymentLegResponse{
				Paid:   tx.Payment.Advance.Paid,
				Amount: tx.Payment.Advance.Amount,
				PaidAt: tx.Payment.Advance.PaidAt,
			},
			Final: dto.PaymentLegResponse{
				Paid:   tx.Payment.Final.Paid,
				Amount: tx.Payment.Final.Amount,
				PaidAt: tx.Payment.Final.PaidAt,
			},
		},
		WorkDetails: dto.WorkDetailsResponse{
			Requirements: tx.WorkDetails.Requirements,
			Deliverables: tx.WorkDetails.Deliverables,
			Deadline:     tx.WorkDetails.Deadline,
			SubmittedAt:  tx.WorkDetails.SubmittedAt,
		},
		CompletedAt: tx.CompletedAt,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
	if tx.BuyerRating != nil {
		resp.BuyerRating = &dto.RatingEntryResponse{
			Rating:  tx.BuyerRating.Rating,
			Review:  tx.BuyerRating.Review,
			RatedAt: tx.BuyerRating.RatedAt,
		}
	}
	if tx.SellerRating != nil {
		resp.SellerRating = &dto.RatingEntryResponse{
			Rating:  tx.SellerRating.Rating,
			Review:  tx.SellerRating.Review,
			RatedAt: tx.SellerRating.RatedAt,
		}
	}
	return resp
}
