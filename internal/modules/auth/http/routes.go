package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/modules/auth/domain"
	"subtrack/internal/modules/auth/infra"
	pg "subtrack/internal/modules/auth/infra/pg"
	plathttp "subtrack/internal/platform/http"
	"subtrack/internal/platform/security"
)

// Module wires the sign-in / session / profile endpoints.
type Module struct {
	userRepo    domain.UserRepo
	sessionRepo domain.SessionRepo
	jwtSecret   []byte
	accessTTL   time.Duration

	google *security.GoogleVerifier
}

func NewModule(jwtSecret string, accessTTL time.Duration) *Module {
	return &Module{
		userRepo:    infra.NewMemUserRepo(),
		sessionRepo: infra.NewMemSessionRepo(),
		jwtSecret:   []byte(jwtSecret),
		accessTTL:   accessTTL,
	}
}

func NewModulePG(db *pgxpool.Pool, jwtSecret string, accessTTL time.Duration) *Module {
	return &Module{
		userRepo:    pg.NewUserRepo(db),
		sessionRepo: pg.NewSessionRepo(db),
		jwtSecret:   []byte(jwtSecret),
		accessTTL:   accessTTL,
	}
}

func (m *Module) WithGoogle(v *security.GoogleVerifier) *Module {
	m.google = v
	return m
}

// WithRepos swaps the backing repos; the signup module shares the same
// user repo so wizard-created accounts can sign in.
func (m *Module) WithRepos(users domain.UserRepo, sessions domain.SessionRepo) *Module {
	m.userRepo = users
	m.sessionRepo = sessions
	return m
}

func (m *Module) UserRepo() domain.UserRepo { return m.userRepo }

func (m *Module) Register(r fiber.Router) {
	jwtMgr := security.NewJWTManager(string(m.jwtSecret), m.accessTTL)

	r.Post("/sign-in", SignInHandler(m.userRepo, m.sessionRepo, jwtMgr))
	r.Post("/auth/google", GoogleSignInHandler(m.userRepo, m.sessionRepo, jwtMgr, m.google))
	r.Post("/refresh", RefreshHandler(m.sessionRepo, jwtMgr))

	protected := r.Group("", plathttp.JWTAuth(m.jwtSecret))
	protected.Delete("/session", SignOutHandler(m.sessionRepo))
	protected.Get("/user", GetProfileHandler(m.userRepo))
	protected.Patch("/user", UpdateProfileHandler(m.userRepo))
	protected.Delete("/user", DeleteUserHandler(m.userRepo, m.sessionRepo))
}
