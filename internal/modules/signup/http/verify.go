package http

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/signup"
	"subtrack/internal/modules/signup/infra"
)

var validate = validator.New()

// SendVerificationHandler creates the account from the draft and sends
// the confirmation code. The wizard tracks the sub-flow status either way.
func SendVerificationHandler(drafts *infra.DraftStore, flow *signup.Flow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := drafts.Get(c.Params("id"))
		if err != nil {
			return draftNotFound(c)
		}
		if err := flow.SendVerification(c.Context(), w); err != nil {
			_, msg := w.Verification()
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error_code": "VERIFICATION_FAILED",
				"message":    msg,
				"state":      snapshot(w),
			})
		}
		return c.JSON(snapshot(w))
	}
}

func ResendHandler(drafts *infra.DraftStore, flow *signup.Flow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := drafts.Get(c.Params("id"))
		if err != nil {
			return draftNotFound(c)
		}
		out := flow.Resend(c.Context(), w)
		status := fiber.StatusOK
		if out.Kind == "error" {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(fiber.Map{
			"kind":    out.Kind,
			"message": out.Message,
			"state":   snapshot(w),
		})
	}
}

func CheckStatusHandler(drafts *infra.DraftStore, flow *signup.Flow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := drafts.Get(c.Params("id"))
		if err != nil {
			return draftNotFound(c)
		}
		flow.CheckStatus(c.Context(), w)
		return c.JSON(snapshot(w))
	}
}

type confirmReq struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ConfirmHandler consumes an emailed code; the wizard (if still open)
// picks the change up on its next status check.
func ConfirmHandler(flow *signup.Flow) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req confirmReq
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"message":    "Invalid request body",
			})
		}
		if err := validate.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "VALIDATION_ERROR",
				"message":    err.Error(),
			})
		}
		if err := flow.Confirm(c.Context(), req.Email, req.Code); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_CODE",
				"message":    "The verification code is invalid or expired",
			})
		}
		return c.JSON(fiber.Map{"message": "Email confirmed"})
	}
}
