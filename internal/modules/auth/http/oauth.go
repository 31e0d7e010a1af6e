package http

import (
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/auth/domain"
	"subtrack/internal/platform/security"
)

type oauthReq struct {
	AccessToken string `json:"access_token"`
	DeviceName  string `json:"device_name"`
}

// GoogleSignInHandler verifies a Google access token and signs the user
// in, provisioning a confirmed account on first contact.
func GoogleSignInHandler(userRepo domain.UserRepo, sessions domain.SessionRepo,
	jwtMgr *security.JWTManager, google *security.GoogleVerifier) fiber.Handler {

	return func(c *fiber.Ctx) error {
		if google == nil {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
				"error_code": "OAUTH_DISABLED",
				"message":    "Google sign-in is not configured",
			})
		}

		var req oauthReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"message":    "Invalid request body",
			})
		}

		email, firstName, lastName, err := google.Verify(c.Context(), req.AccessToken)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_TOKEN",
				"message":    "Could not verify the Google token",
			})
		}

		u, _ := userRepo.GetByEmail(email)
		if u == nil {
			u, err = userRepo.Create(domain.CreateUserParams{
				Email:     email,
				FirstName: firstName,
				LastName:  lastName,
				Provider:  "google",
			})
			if err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error_code": "SERVER_ERROR",
					"message":    "Could not create the account",
				})
			}
		} else {
			_ = userRepo.AddProvider(u.ID, "google")
			// a Google-verified address counts as confirmed
			_ = userRepo.ConfirmEmail(u.ID)
		}

		resp, err := openSession(c, u.ID, req.DeviceName, sessions, jwtMgr)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"message":    "Could not create a session",
			})
		}
		resp.Message = "Signed in with Google"
		return c.JSON(resp)
	}
}
