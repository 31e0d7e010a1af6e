package http

import (
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/auth/domain"
)

func SignOutHandler(sessions domain.SessionRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		sid, _ := c.Locals("session_id").(string)
		if uid == "" || sid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error_code": "UNAUTHORIZED",
				"message":    "Please log in again",
			})
		}
		if err := sessions.Revoke(sid, uid); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"message":    "Could not sign out",
			})
		}
		return c.JSON(fiber.Map{"message": "Signed out"})
	}
}
