package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/civicdesk/notification-service/internal/chat"
	"github.com/civicdesk/notification-service/internal/middleware"
	"github.com/civicdesk/notification-service/internal/models"
)

type ChatHandler struct {
	router *chat.Router
	log    *zap.SugaredLogger
}

func NewChatHandler(router *chat.Router, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{router: router, log: log}
}

type sendMessageRequest struct {
	ReceiverID   string             `json:"receiver_id"`
	ReceiverRole models.ChatRole    `json:"receiver_role"`
	Body         string             `json:"body"`
	ComplaintID  string             `json:"complaint_id,omitempty"`
	MessageType  models.MessageType `json:"message_type,omitempty"`
	FileURL      string             `json:"file_url,omitempty"`
}

// SendMessage sends as the authenticated principal; sender identity is never
// taken from the request body.
func (h *ChatHandler) SendMessage(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var req sendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	msg, err := h.router.SendMessage(c.Context(), chat.SendMessageInput{
		SenderID:     p.ID,
		SenderRole:   p.Role,
		ReceiverID:   req.ReceiverID,
		ReceiverRole: req.ReceiverRole,
		Body:         req.Body,
		ComplaintID:  req.ComplaintID,
		MessageType:  req.MessageType,
		FileURL:      req.FileURL,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}

func (h *ChatHandler) GetConversation(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	msgs, err := h.router.GetConversation(c.Context(), c.Params("complaintId"), p.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

// History supports incremental catch-up on a conversation id with an
// optional ?since=RFC3339 cursor.
func (h *ChatHandler) History(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var since time.Time
	if v := c.Query("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid since cursor"})
		}
		since = t
	}
	msgs, err := h.router.History(c.Context(), c.Params("conversationId"), p.ID, since)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": msgs})
}

type editMessageRequest struct {
	Body string `json:"body"`
}

func (h *ChatHandler) EditMessage(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var req editMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	msg, err := h.router.EditMessage(c.Context(), c.Params("id"), p.ID, req.Body)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(msg)
}

func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	err := h.router.DeleteMessageFor(c.Context(), c.Params("id"), models.Actor{ID: p.ID, Role: p.Role})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func (h *ChatHandler) MarkConversationRead(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	n, err := h.router.MarkConversationRead(c.Context(), c.Params("conversationId"), p.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"modified": n})
}
