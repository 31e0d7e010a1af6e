package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/modules/subscription"
	"subtrack/internal/modules/subscription/infra"
	pg "subtrack/internal/modules/subscription/infra/pg"
	plathttp "subtrack/internal/platform/http"
	"subtrack/internal/platform/observe"
)

// Notifier pushes a toast-style notification to a user. The subscription
// endpoints report their outcomes through it; a nil Notifier is skipped.
type Notifier interface {
	Push(userID, kind, title, message string)
}

// Module wires the per-user subscription endpoints. All of them require
// a valid access token.
type Module struct {
	registry *subscription.Registry
	notify   Notifier
	secret   []byte
}

func NewModule(jwtSecret string, rec *observe.Recorder) *Module {
	return &Module{
		registry: subscription.NewRegistry(infra.NewMemoryStore(), rec),
		secret:   []byte(jwtSecret),
	}
}

func NewModulePG(db *pgxpool.Pool, jwtSecret string, rec *observe.Recorder) *Module {
	return &Module{
		registry: subscription.NewRegistry(pg.NewStore(db), rec),
		secret:   []byte(jwtSecret),
	}
}

func NewModuleWithStore(store subscription.Store, jwtSecret string, rec *observe.Recorder) *Module {
	return &Module{
		registry: subscription.NewRegistry(store, rec),
		secret:   []byte(jwtSecret),
	}
}

func (m *Module) WithNotifier(n Notifier) *Module {
	m.notify = n
	return m
}

func (m *Module) Registry() *subscription.Registry { return m.registry }

func (m *Module) Register(r fiber.Router) {
	g := r.Group("/subscriptions", plathttp.JWTAuth(m.secret))
	g.Get("/", ListHandler(m.registry))
	g.Post("/", CreateHandler(m.registry, m.notify))
	g.Put("/:id", UpdateHandler(m.registry, m.notify))
	g.Delete("/:id", DeleteHandler(m.registry, m.notify))
}
