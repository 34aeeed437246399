package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warrantyvault/backend/api/controllers"
	"github.com/warrantyvault/backend/api/middleware"
	"github.com/warrantyvault/backend/internal/auth"
	"github.com/warrantyvault/backend/internal/users"
	"github.com/warrantyvault/backend/internal/warranties"
	"github.com/warrantyvault/backend/pkg/auth/session"
	"github.com/warrantyvault/backend/pkg/config"
	"github.com/warrantyvault/backend/pkg/db"
	"github.com/warrantyvault/backend/pkg/logger"
	"github.com/warrantyvault/backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionManager  sessionManager
	AuthService     auth.Service
	RegisterService auth.RegisterService
	UsersService    users.Service
	Warranties      warranties.Service
}

func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, params.DB, params.Redis, logg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, params.Redis, logg)).Post("/login", controllers.AuthLogin(params.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, params.Redis, logg)).Post("/register", controllers.AuthRegister(params.RegisterService, params.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(params.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(params.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, params.SessionManager, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/users/me", func(r chi.Router) {
			r.Get("/", controllers.GetMe(params.UsersService, logg))
			r.Put("/", controllers.UpdateMe(params.UsersService, logg))
		})

		r.Route("/warranties", func(r chi.Router) {
			r.Get("/", controllers.ListWarranties(params.Warranties, logg))
			r.Post("/", controllers.CreateWarranty(params.Warranties, logg))
			r.Route("/{warrantyID}", func(r chi.Router) {
				r.Get("/", controllers.GetWarranty(params.Warranties, logg))
				r.Put("/", controllers.UpdateWarranty(params.Warranties, logg))
				r.Delete("/", controllers.DeleteWarranty(params.Warranties, logg))
			})
		})
	})

	return r
}
