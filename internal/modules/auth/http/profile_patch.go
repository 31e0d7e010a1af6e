package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/auth/domain"
	signupdomain "subtrack/internal/modules/signup/domain"
	"subtrack/internal/platform/apperr"
)

type updateProfileReq struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
}

func UpdateProfileHandler(userRepo domain.UserRepo) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, _ := c.Locals("user_id").(string)
		if uid == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error_code": "UNAUTHORIZED",
				"message":    "Please log in again",
			})
		}

		var req updateProfileReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"message":    "Invalid request body",
			})
		}

		// same field rules as the signup wizard
		if req.FirstName != nil {
			if v := signupdomain.ValidateName(*req.FirstName, "First name"); v != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "VALIDATION_ERROR",
					"message":    v.Message,
				})
			}
		}
		if req.LastName != nil {
			if v := signupdomain.ValidateName(*req.LastName, "Last name"); v != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "VALIDATION_ERROR",
					"message":    v.Message,
				})
			}
		}
		if req.Phone != nil {
			if v := signupdomain.ValidatePhoneNumber(*req.Phone); v != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error_code": "VALIDATION_ERROR",
					"message":    v.Message,
				})
			}
		}

		if err := userRepo.UpdateProfile(uid, req.FirstName, req.LastName, req.Phone); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error_code": "NOT_FOUND",
					"message":    "User not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"message":    "Could not update the profile",
			})
		}
		return c.JSON(fiber.Map{"message": "Profile updated"})
	}
}
