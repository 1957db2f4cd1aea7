package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/stockpilot/stockpilot/internal/transport/http/handlers"
)

// Deps collects everything the router mounts. Middlewares arrive as
// plain func(http.Handler) http.Handler so tests can inject fakes.
type Deps struct {
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler

	RequestIDMW func(http.Handler) http.Handler
	SessionMW   func(http.Handler) http.Handler
	AdminMW     func(http.Handler) http.Handler

	// Rate limits, nil disables.
	RLLogin    func(http.Handler) http.Handler
	RLRegister func(http.Handler) http.Handler
}

func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	if d.RequestIDMW != nil {
		r.Use(d.RequestIDMW)
	}

	r.Get("/healthz", d.Health.Healthz)
	r.Get("/readyz", d.Health.Readyz)

	// Public auth surface.
	r.Group(func(r chi.Router) {
		if d.RLRegister != nil {
			r.With(d.RLRegister).Post("/register", d.Auth.Register)
		} else {
			r.Post("/register", d.Auth.Register)
		}
		if d.RLLogin != nil {
			r.With(d.RLLogin).Post("/login", d.Auth.Login)
		} else {
			r.Post("/login", d.Auth.Login)
		}
		r.Get("/verify", d.Auth.Verify)
		// Logout works without a session: clearing the cookie is
		// idempotent and a stale credential should not block it.
		r.Post("/logout", d.Auth.Logout)
	})

	// Session-guarded surface.
	r.Group(func(r chi.Router) {
		r.Use(d.SessionMW)
		r.Get("/user", d.Auth.User)

		r.Route("/admin", func(r chi.Router) {
			r.Use(d.AdminMW)
			r.Get("/users", d.Auth.AdminListUsers)
		})
	})

	return r
}
