package http

import (
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/notification"
)

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// ListHandler returns the persisted history plus the toasts currently
// on screen.
func ListHandler(reg *notification.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := reg.ForUser(userID(c))
		if err := m.Load(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error_code": "NETWORK_ERROR",
				"message":    "Please check your connection and try again",
			})
		}
		return c.JSON(fiber.Map{
			"notifications": m.History(),
			"toasts":        m.Toasts(),
		})
	}
}

func DismissHandler(reg *notification.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reg.ForUser(userID(c)).Dismiss(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func RemoveHandler(reg *notification.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := reg.ForUser(userID(c)).Remove(c.Context(), c.Params("id")); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error_code": "NETWORK_ERROR",
				"message":    "Please check your connection and try again",
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ClearAllHandler(reg *notification.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := reg.ForUser(userID(c)).ClearAll(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error_code": "NETWORK_ERROR",
				"message":    "Please check your connection and try again",
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
