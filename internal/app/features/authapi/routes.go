package authapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
)

// Routes mounts the unauthenticated auth endpoints under /auth.
func Routes(h *Handler, policy *cors.Policy) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodPost))
	r.Post("/login", h.LoginHandler)
	r.Post("/register", h.RegisterHandler)
	return r
}

// MeRoutes mounts GET /me. Any authenticated caller may read their own
// profile, including suspended ones, so the UI can explain the suspension.
func MeRoutes(h *Handler, policy *cors.Policy, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet))
	r.Use(guard.Middleware(auth.Options{}))
	r.Get("/", h.MeHandler)
	return r
}
