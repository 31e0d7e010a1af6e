package http

import (
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/signup/infra"
)

// NextHandler advances the wizard when the active step's gate passes;
// a blocked advance returns the blocking error set with 422.
func NextHandler(drafts *infra.DraftStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := drafts.Get(c.Params("id"))
		if err != nil {
			return draftNotFound(c)
		}
		if !w.Next() {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error_code": "STEP_BLOCKED",
				"message":    "Fix the highlighted fields before continuing",
				"state":      snapshot(w),
			})
		}
		return c.JSON(snapshot(w))
	}
}

func BackHandler(drafts *infra.DraftStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := drafts.Get(c.Params("id"))
		if err != nil {
			return draftNotFound(c)
		}
		w.Back() // no-op below the first step
		return c.JSON(snapshot(w))
	}
}
