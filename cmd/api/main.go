package main

import (
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"subtrack/internal/db"
	authhttp "subtrack/internal/modules/auth/http"
	authinfra "subtrack/internal/modules/auth/infra"
	authpg "subtrack/internal/modules/auth/infra/pg"
	notifhttp "subtrack/internal/modules/notification/http"
	signuphttp "subtrack/internal/modules/signup/http"
	signupinfra "subtrack/internal/modules/signup/infra"
	subhttp "subtrack/internal/modules/subscription/http"
	subinfra "subtrack/internal/modules/subscription/infra"
	subpg "subtrack/internal/modules/subscription/infra/pg"
	"subtrack/internal/platform/config"
	plathttp "subtrack/internal/platform/http"
	"subtrack/internal/platform/notify"
	"subtrack/internal/platform/observe"
	"subtrack/internal/platform/security"
	"subtrack/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	if cfg.Env != "production" {
		mailer.InsecureSkipVerify = true
	}
	rec := observe.NewRecorder(256)
	drafts := signupinfra.NewDraftStore(30 * time.Minute)
	defer drafts.Close()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool = db.MustOpen(cfg.DatabaseURL)
		defer pool.Close()
		log.Println("storage: postgres")
	} else {
		log.Println("storage: in-memory (set DATABASE_URL for postgres)")
	}

	notifMod := notifhttp.NewModule(cfg.JWTSecret)
	authMod := authhttp.NewModule(cfg.JWTSecret, cfg.AccessTokenTTL())
	var (
		subMod    *subhttp.Module
		signupMod *signuphttp.Module
		renewals  scheduler.RenewalSource
	)

	if pool != nil {
		notifMod = notifhttp.NewModulePG(pool, cfg.JWTSecret)
		subStore := subpg.NewStore(pool)
		subMod = subhttp.NewModuleWithStore(subStore, cfg.JWTSecret, rec)
		authMod = authhttp.NewModulePG(pool, cfg.JWTSecret, cfg.AccessTokenTTL())
		signupMod = signuphttp.NewModule(authpg.NewUserRepo(pool), authpg.NewCodeRepo(pool), mailer, drafts)
		renewals = subStore
	} else {
		// the signup and auth modules share one user repo so wizard-created
		// accounts can sign in
		users := authinfra.NewMemUserRepo()
		authMod.WithRepos(users, authinfra.NewMemSessionRepo())
		signupMod = signuphttp.NewModule(users, authinfra.NewMemCodeRepo(), mailer, drafts)
		memStore := subinfra.NewMemoryStore()
		subMod = subhttp.NewModuleWithStore(memStore, cfg.JWTSecret, rec)
		renewals = memStore
	}

	if cfg.GoogleClientID != "" {
		authMod.WithGoogle(security.NewGoogleVerifier(cfg.GoogleClientID))
	}
	subMod.WithNotifier(notifMod.Registry())

	if cfg.RemindersEnabled {
		sched := scheduler.New(renewals, notifMod.Registry(), mailer)
		if err := sched.Start(""); err != nil {
			log.Fatalf("scheduler: %v", err)
		}
		defer sched.Stop()
	}

	app := plathttp.NewServer(plathttp.Options{AppName: "subtrack"},
		signupMod, authMod, subMod, notifMod)

	log.Printf("listening on %s", cfg.HTTPAddr)
	if err := app.Listen(cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
