package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/notification-service/internal/apperr"
)

// fail maps the error taxonomy onto HTTP statuses. Store failures come out
// as a generic 503: they break the persistence invariant and must never be
// swallowed like channel failures.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthorized):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "service unavailable"})
	}
}
