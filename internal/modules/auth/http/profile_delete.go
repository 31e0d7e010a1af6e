package http

import (
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/auth/domain"
)

func DeleteUserHandler(userRepo domain.UserRepo, sessions domain.SessionRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error_code": "UNAUTHORIZED",
				"message":    "Please log in again",
			})
		}
		if _, err := sessions.RevokeAll(uid); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"message":    "Could not delete the account",
			})
		}
		if err := userRepo.Delete(uid); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"message":    "Could not delete the account",
			})
		}
		return c.JSON(fiber.Map{"message": "Account deleted"})
	}
}
