package calendar

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
)

// Routes mounts the admin calendar endpoints.
func Routes(h *Handler, policy *cors.Policy, guard *auth.Guard, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true}))
	r.Use(gate.Gate(auth.RoleAdmin, "Calendar"))

	write := guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true, RequireWrite: true})

	r.Get("/", h.ListHandler)
	r.Get("/{id}", h.GetHandler)
	r.With(write).Post("/", h.CreateHandler)
	r.With(write).Put("/{id}", h.UpdateHandler)
	r.With(write).Delete("/{id}", h.DeleteHandler)
	return r
}

// PublicRoutes mounts the unauthenticated public calendar feed.
func PublicRoutes(h *Handler, policy *cors.Policy) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet))
	r.Get("/", h.PublicListHandler)
	return r
}
