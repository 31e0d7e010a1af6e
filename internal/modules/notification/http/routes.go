package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/modules/notification"
	"subtrack/internal/modules/notification/infra"
	pg "subtrack/internal/modules/notification/infra/pg"
	plathttp "subtrack/internal/platform/http"
)

// Module wires the per-user notification endpoints.
type Module struct {
	registry *notification.Registry
	secret   []byte
}

func NewModule(jwtSecret string) *Module {
	return &Module{
		registry: notification.NewRegistry(infra.NewMemoryStore()),
		secret:   []byte(jwtSecret),
	}
}

func NewModulePG(db *pgxpool.Pool, jwtSecret string) *Module {
	return &Module{
		registry: notification.NewRegistry(pg.NewStore(db)),
		secret:   []byte(jwtSecret),
	}
}

// Registry exposes the shared registry so other modules can push
// notifications for their own outcomes.
func (m *Module) Registry() *notification.Registry { return m.registry }

func (m *Module) Register(r fiber.Router) {
	g := r.Group("/notifications", plathttp.JWTAuth(m.secret))
	g.Get("/", ListHandler(m.registry))
	g.Post("/:id/dismiss", DismissHandler(m.registry))
	g.Delete("/:id", RemoveHandler(m.registry))
	g.Delete("/", ClearAllHandler(m.registry))
}
