package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// JWTAuth extracts and verifies the bearer token, storing user_id and
// session_id in the request locals.
func JWTAuth(secret []byte) fiber.Handler {
	unauthorized := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error_code": "UNAUTHORIZED",
			"message":    "Please log in again",
		})
	}
	return func(c *fiber.Ctx) error {
		h := c.Get("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			return unauthorized(c)
		}
		tokenStr := strings.TrimPrefix(h, "Bearer ")
		tok, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !tok.Valid {
			return unauthorized(c)
		}
		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return unauthorized(c)
		}
		if sub, _ := claims["sub"].(string); sub != "" {
			c.Locals("user_id", sub)
		}
		if sid, _ := claims["sid"].(string); sid != "" {
			c.Locals("session_id", sid)
		}
		return c.Next()
	}
}
