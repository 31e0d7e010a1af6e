package http

import "github.com/gofiber/fiber/v2"

// Module is implemented by every feature module; each one registers its
// own routes on the shared /api/v1 prefix.
type Module interface {
	Register(r fiber.Router)
}
