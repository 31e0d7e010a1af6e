package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/auth/domain"
	"subtrack/internal/platform/security"
)

type signInReq struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	DeviceName string `json:"device_name"`
}

type signInResp struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

func SignInHandler(userRepo domain.UserRepo, sessions domain.SessionRepo, jwtMgr *security.JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signInReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"message":    "Invalid request body",
			})
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		u, err := userRepo.GetByEmail(req.Email)
		if err != nil || u == nil || u.PasswordHash == nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_CREDENTIALS",
				"message":    "Incorrect email or password",
			})
		}
		if u.IsBlocked {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error_code": "ACCOUNT_BLOCKED",
				"message":    "This account has been blocked",
			})
		}
		if !u.EmailConfirmed() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "EMAIL_NOT_CONFIRMED",
				"message":    "Please confirm your email before signing in",
			})
		}
		ok, _ := security.CheckPassword(*u.PasswordHash, req.Password)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_CREDENTIALS",
				"message":    "Incorrect email or password",
			})
		}

		resp, err := openSession(c, u.ID, req.DeviceName, sessions, jwtMgr)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error_code": "SERVER_ERROR",
				"message":    "Could not create a session",
			})
		}
		resp.Message = "Signed in"
		return c.JSON(resp)
	}
}

// openSession issues the refresh token, stores the session row, then
// signs the access token with the new session id.
func openSession(c *fiber.Ctx, userID, deviceName string,
	sessions domain.SessionRepo, jwtMgr *security.JWTManager) (*signInResp, error) {

	rt, err := security.IssueRefresh()
	if err != nil {
		return nil, err
	}
	rth := security.HashToken(rt)
	ip := c.IP()
	ua := c.Get("User-Agent")

	sess, err := sessions.Create(domain.Session{
		UserID:           userID,
		RefreshTokenHash: rth,
		DeviceName:       &deviceName,
		IPAddress:        &ip,
		UserAgent:        &ua,
	})
	if err != nil {
		return nil, err
	}
	at, exp, err := jwtMgr.IssueAccess(userID, sess.ID)
	if err != nil {
		return nil, err
	}
	return &signInResp{
		AccessToken:  at,
		RefreshToken: rt,
		ExpiresAt:    exp.UTC().Format(time.RFC3339),
	}, nil
}
