package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/civicdesk/notification-service/internal/handlers"
	"github.com/civicdesk/notification-service/internal/metrics"
	"github.com/civicdesk/notification-service/internal/middleware"
)

func Register(app *fiber.App, nh *handlers.NotificationHandler, ch *handlers.ChatHandler, wh *handlers.WSHandler, jwtSecret string) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", metrics.Handler())

	auth := middleware.JWTAuth(jwtSecret)

	api := app.Group("/api/v1", auth)

	n := api.Group("/notifications")
	n.Post("/", nh.Notify)
	n.Post("/bulk", nh.NotifyMany)
	n.Get("/", nh.List)
	n.Get("/unread-count", nh.CountUnread)
	n.Get("/stats", nh.StatsByKind)
	n.Patch("/read-all", nh.MarkAllRead)
	n.Patch("/:id/read", nh.MarkRead)
	n.Delete("/", nh.ClearAll)
	n.Delete("/:id", nh.Delete)

	c := api.Group("/chat")
	c.Post("/messages", ch.SendMessage)
	c.Patch("/messages/:id", ch.EditMessage)
	c.Delete("/messages/:id", ch.DeleteMessage)
	c.Get("/conversations/complaint/:complaintId", ch.GetConversation)
	c.Get("/conversations/:conversationId/messages", ch.History)
	c.Patch("/conversations/:conversationId/read", ch.MarkConversationRead)

	// websocket upgrade; token travels as a query param since browsers cannot
	// set headers on ws connects
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(wh.Serve))
}
