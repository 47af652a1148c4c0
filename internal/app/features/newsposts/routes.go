package newsposts

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
)

// TeacherRoutes mounts the teacher authoring endpoints.
func TeacherRoutes(h *Handler, policy *cors.Policy, guard *auth.Guard, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost, http.MethodPut))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleTeacher}, RequireActive: true}))
	r.Use(gate.Gate(auth.RoleTeacher, "NewsPosts"))

	r.Get("/", h.MyPostsHandler)
	r.Post("/", h.CreateHandler)
	r.Put("/{id}", h.UpdateHandler)
	r.Post("/{id}/submit", h.SubmitHandler)
	return r
}

// Routes mounts the admin review endpoints.
func Routes(h *Handler, policy *cors.Policy, guard *auth.Guard, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost, http.MethodDelete))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true}))
	r.Use(gate.Gate(auth.RoleAdmin, "NewsPosts"))

	write := guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true, RequireWrite: true})

	r.Get("/", h.ListHandler)
	r.Get("/{id}", h.GetHandler)
	r.With(write).Post("/{id}/review", h.ReviewHandler)
	r.With(write).Post("/{id}/publish", h.PublishHandler)
	r.With(write).Post("/{id}/unpublish", h.UnpublishHandler)
	r.With(write).Post("/{id}/pin", h.PinHandler)
	r.With(write).Delete("/{id}", h.DeleteHandler)
	return r
}

// PublicRoutes mounts the public feed.
func PublicRoutes(h *Handler, policy *cors.Policy) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet))
	r.Get("/", h.PublicListHandler)
	r.Get("/{slug}", h.PublicGetHandler)
	return r
}
