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

// MessagesHandler manages counterparty messaging endpoints.
type MessagesHandler struct {
	messages *service.MessageService
	validate *appvalidator.Validator
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messages *service.MessageService, validate *appvalidator.Validator) *MessagesHandler {
	return &MessagesHandler{messages: messages, validate: validate}
}

// Send POST /messages/:userId. The path segment is the receiver.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Validate(req); err != nil {
		return err
	}

	msg, err := h.messages.Send(c.UserContext(), user.ID, service.MessageSendInput{
		ReceiverID:    c.Params("userId"),
		TransactionID: req.TransactionID,
		Content:       req.Content,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": messageResponse(msg)})
}

// Thread GET /messages/:userId.
func (h *MessagesHandler) Thread(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	msgs, err := h.messages.Thread(c.UserContext(), user.ID, c.Params("userId"), parseInt(c.Query("limit"), 100))
	if err != nil {
		return err
	}
	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, messageResponse(&msgs[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Conversations GET /messages/conversations.
func (h *MessagesHandler) Conversations(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	conversations, err := h.messages.Conversations(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	items := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		items = append(items, dto.ConversationResponse{
			UserID:          conv.UserID,
			UserName:        conv.UserName,
			UserEmail:       conv.UserEmail,
			UserDepartment:  conv.UserDepartment,
			LastMessage:     conv.LastMessage,
			LastMessageTime: conv.LastMessageTime,
			UnreadCount:     conv.UnreadCount,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// MarkRead PUT /messages/read/:messageId.
func (h *MessagesHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	msg, err := h.messages.MarkRead(c.UserContext(), user.ID, c.Params("messageId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": messageResponse(msg)})
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:            msg.ID,
		SenderID:      msg.SenderID,
		ReceiverID:    msg.ReceiverID,
		TransactionID: msg.TransactionID,
		Content:       msg.Content,
		Read:          msg.Read,
		ReadAt:        msg.ReadAt,
		CreatedAt:     msg.CreatedAt,
	}
}
