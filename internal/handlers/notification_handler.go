package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/civicdesk/notification-service/internal/dispatch"
	"github.com/civicdesk/notification-service/internal/middleware"
	"github.com/civicdesk/notification-service/internal/models"
)

type NotificationHandler struct {
	engine   *dispatch.Engine
	validate *validator.Validate
	log      *zap.SugaredLogger
}

func NewNotificationHandler(engine *dispatch.Engine, log *zap.SugaredLogger) *NotificationHandler {
	return &NotificationHandler{
		engine:   engine,
		validate: validator.New(),
		log:      log,
	}
}

type notifyRequest struct {
	Recipient models.RecipientRef     `json:"recipient" validate:"required"`
	Kind      models.NotificationKind `json:"kind" validate:"required"`
	Message   string                  `json:"message" validate:"required"`
	Subject   string                  `json:"subject,omitempty"`
}

// Notify is invoked by staff/admin tooling; the client only ever learns
// "sent", not "delivered".
func (h *NotificationHandler) Notify(c *fiber.Ctx) error {
	var req notifyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	n, err := h.engine.Notify(c.Context(), req.Recipient, req.Kind, req.Message, req.Subject)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(n)
}

type notifyManyRequest struct {
	Recipients []models.RecipientRef   `json:"recipients" validate:"required,min=1"`
	Kind       models.NotificationKind `json:"kind" validate:"required"`
	Message    string                  `json:"message" validate:"required"`
	Subject    string                  `json:"subject,omitempty"`
}

func (h *NotificationHandler) NotifyMany(c *fiber.Ctx) error {
	var req notifyManyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if err := h.validate.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	results := h.engine.NotifyMany(c.Context(), req.Recipients, req.Kind, req.Message, req.Subject)
	return c.JSON(fiber.Map{"results": results})
}

func (h *NotificationHandler) List(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var f models.NotificationFilter
	if v := c.Query("is_read"); v != "" {
		b := v == "true"
		f.IsRead = &b
	}
	f.Kind = models.NotificationKind(c.Query("kind"))
	page := int64(c.QueryInt("page", 1))
	pageSize := int64(c.QueryInt("page_size", 20))
	out, err := h.engine.List(c.Context(), p.ID, f, page, pageSize)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"notifications": out})
}

func (h *NotificationHandler) CountUnread(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	n, err := h.engine.CountUnread(c.Context(), p.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"unread": n})
}

func (h *NotificationHandler) StatsByKind(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	stats, err := h.engine.StatsByKind(c.Context(), p.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"stats": stats})
}

func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if err := h.engine.MarkRead(c.Context(), p.ID, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "read"})
}

func (h *NotificationHandler) MarkAllRead(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	n, err := h.engine.MarkAllRead(c.Context(), p.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"modified": n})
}

func (h *NotificationHandler) Delete(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	if err := h.engine.Delete(c.Context(), p.ID, c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func (h *NotificationHandler) ClearAll(c *fiber.Ctx) error {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	n, err := h.engine.ClearAll(c.Context(), p.ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}
