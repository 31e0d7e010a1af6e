package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/subscription"
	"subtrack/internal/modules/subscription/domain"
	"subtrack/internal/platform/apperr"
)

var validate = validator.New()

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// statusFor maps the error category to an HTTP status. The body always
// carries the classified code and the user-facing message.
func statusFor(e *apperr.Error) int {
	switch e.Category {
	case apperr.CategoryValidation, apperr.CategoryConstraint:
		return fiber.StatusUnprocessableEntity
	case apperr.CategoryConflict:
		return fiber.StatusConflict
	case apperr.CategoryAuth:
		return fiber.StatusUnauthorized
	case apperr.CategoryNotFound:
		return fiber.StatusNotFound
	case apperr.CategoryTransient:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func renderErr(c *fiber.Ctx, err error) error {
	e := apperr.Classify(err)
	return c.Status(statusFor(e)).JSON(fiber.Map{
		"error_code": e.Code,
		"message":    e.Message,
	})
}

func renderValidation(c *fiber.Ctx, verrs []domain.ValidationError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"error_code": "VALIDATION_ERROR",
		"message":    verrs[0].Message,
		"errors":     verrs,
	})
}

func parseForm(c *fiber.Ctx) (domain.Form, error) {
	var f domain.Form
	if err := c.BodyParser(&f); err != nil {
		return f, apperr.New(apperr.CategoryValidation, "INVALID_FIELDS", "Invalid request body")
	}
	if err := validate.Struct(f); err != nil {
		return f, apperr.Wrap(apperr.CategoryValidation, "VALIDATION_ERROR", err.Error(), err)
	}
	return f, nil
}

func push(n Notifier, userID, kind, title, msg string) {
	if n != nil {
		n.Push(userID, kind, title, msg)
	}
}

// ListHandler refreshes the user's mirror from the store and returns it.
func ListHandler(reg *subscription.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m := reg.ForUser(userID(c))
		if err := m.Load(c.Context()); err != nil {
			return renderErr(c, err)
		}
		return c.JSON(fiber.Map{"subscriptions": m.List()})
	}
}

func CreateHandler(reg *subscription.Registry, n Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		f, err := parseForm(c)
		if err != nil {
			return renderErr(c, err)
		}
		s, verrs, err := reg.ForUser(uid).Add(c.Context(), f)
		if err != nil {
			e := apperr.Classify(err)
			push(n, uid, "error", "Save failed", e.Message)
			return renderErr(c, err)
		}
		if len(verrs) > 0 {
			return renderValidation(c, verrs)
		}
		push(n, uid, "success", "Subscription added", s.Name+" has been added")
		return c.Status(fiber.StatusCreated).JSON(s)
	}
}

func UpdateHandler(reg *subscription.Registry, n Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		f, err := parseForm(c)
		if err != nil {
			return renderErr(c, err)
		}
		s, verrs, err := reg.ForUser(uid).Update(c.Context(), c.Params("id"), f)
		if err != nil {
			e := apperr.Classify(err)
			if !errors.Is(err, subscription.ErrNoRecord) {
				push(n, uid, "error", "Update failed", e.Message)
			}
			return renderErr(c, err)
		}
		if len(verrs) > 0 {
			return renderValidation(c, verrs)
		}
		push(n, uid, "success", "Subscription updated", s.Name+" has been updated")
		return c.JSON(s)
	}
}

func DeleteHandler(reg *subscription.Registry, n Notifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := userID(c)
		if err := reg.ForUser(uid).Remove(c.Context(), c.Params("id")); err != nil {
			e := apperr.Classify(err)
			if !errors.Is(err, subscription.ErrNoRecord) {
				push(n, uid, "error", "Delete failed", e.Message)
			}
			return renderErr(c, err)
		}
		push(n, uid, "success", "Subscription removed", "The subscription has been removed")
		return c.SendStatus(fiber.StatusNoContent)
	}
}
