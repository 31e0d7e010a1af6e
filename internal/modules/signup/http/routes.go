package http

import (
	"github.com/gofiber/fiber/v2"

	authdomain "subtrack/internal/modules/auth/domain"
	"subtrack/internal/modules/signup"
	"subtrack/internal/modules/signup/infra"
)

// Module exposes the signup wizard over HTTP. Drafts are addressed by
// the id returned from the create call; nothing is persisted until the
// verification step creates the account.
type Module struct {
	drafts *infra.DraftStore
	flow   *signup.Flow
}

func NewModule(users authdomain.UserRepo, codes authdomain.CodeRepo, mailer signup.Mailer, drafts *infra.DraftStore) *Module {
	return &Module{
		drafts: drafts,
		flow:   signup.NewFlow(users, codes, mailer),
	}
}

func (m *Module) Register(r fiber.Router) {
	g := r.Group("/signup")

	g.Post("/draft", CreateDraftHandler(m.drafts))
	g.Get("/draft/:id", GetDraftHandler(m.drafts))
	g.Patch("/draft/:id", PatchDraftHandler(m.drafts))
	g.Delete("/draft/:id", DeleteDraftHandler(m.drafts))

	g.Post("/draft/:id/next", NextHandler(m.drafts))
	g.Post("/draft/:id/back", BackHandler(m.drafts))

	g.Post("/draft/:id/verification", SendVerificationHandler(m.drafts, m.flow))
	g.Post("/draft/:id/verification/resend", ResendHandler(m.drafts, m.flow))
	g.Post("/draft/:id/verification/check", CheckStatusHandler(m.drafts, m.flow))

	g.Post("/confirm", ConfirmHandler(m.flow))
}
