package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/auth/domain"
	"subtrack/internal/platform/security"
)

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
	DeviceName   string `json:"device_name"`
}

// RefreshHandler rotates the refresh token: the old session is revoked
// and a new one is created before the access token is reissued.
func RefreshHandler(sessions domain.SessionRepo, jwtMgr *security.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req refreshReq
		if err := c.BodyParser(&req); err != nil || req.RefreshToken == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"message":    "Invalid request body",
			})
		}

		hash := security.HashToken(req.RefreshToken)
		s, err := sessions.FindByRefreshHash(hash)
		if err != nil || s == nil || s.RevokedAt != nil || time.Now().After(s.ExpiresAt) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error_code": "INVALID_REFRESH",
				"message":    "Invalid or expired refresh token",
			})
		}

		_ = sessions.Revoke(s.ID, s.UserID)

		resp, err := openSession(c, s.UserID, req.DeviceName, sessions, jwtMgr)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"message":    "Could not refresh the session",
			})
		}
		resp.Message = "Tokens refreshed"
		return c.JSON(resp)
	}
}
