package http

import (
	"github.com/gofiber/fiber/v2"

	"subtrack/internal/modules/signup/domain"
	"subtrack/internal/modules/signup/infra"
)

// wizardState is the wire shape of a wizard snapshot. The password
// fields are never echoed back.
type wizardState struct {
	DraftID      string                   `json:"draft_id"`
	CurrentStep  int                      `json:"current_step"`
	Steps        []domain.StepDescriptor  `json:"steps"`
	Errors       []domain.ValidationError `json:"errors"`
	Verification string                   `json:"verification"`
	Message      string                   `json:"verification_message,omitempty"`
}

func snapshot(w *domain.Wizard) wizardState {
	st, msg := w.Verification()
	errs := w.VisibleErrors()
	if errs == nil {
		errs = []domain.ValidationError{}
	}
	return wizardState{
		DraftID:      w.ID,
		CurrentStep:  int(w.Current()),
		Steps:        w.Steps(),
		Errors:       errs,
		Verification: string(st),
		Message:      msg,
	}
}

func draftNotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error_code": "DRAFT_NOT_FOUND",
		"message":    "Signup draft not found or expired",
	})
}

func CreateDraftHandler(drafts *infra.DraftStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w := drafts.Create()
		return c.Status(fiber.StatusCreated).JSON(snapshot(w))
	}
}

func GetDraftHandler(drafts *infra.DraftStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := drafts.Get(c.Params("id"))
		if err != nil {
			return draftNotFound(c)
		}
		return c.JSON(snapshot(w))
	}
}

type patchReq struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// PatchDraftHandler mutates one field; the response carries the
// re-validated, step-filtered error set.
func PatchDraftHandler(drafts *infra.DraftStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		w, err := drafts.Get(c.Params("id"))
		if err != nil {
			return draftNotFound(c)
		}
		var req patchReq
		if err := c.BodyParser(&req); err != nil || req.Field == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "INVALID_FIELDS",
				"message":    "Invalid request body",
			})
		}
		if err := w.SetField(req.Field, req.Value); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error_code": "UNKNOWN_FIELD",
				"message":    err.Error(),
			})
		}
		return c.JSON(snapshot(w))
	}
}

// DeleteDraftHandler discards the draft (completion or navigation away).
func DeleteDraftHandler(drafts *infra.DraftStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		drafts.Delete(c.Params("id"))
		return c.JSON(fiber.Map{"message": "Draft discarded"})
	}
}
