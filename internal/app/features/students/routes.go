package students

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
)

// Routes mounts the admin student endpoints.
func Routes(h *Handler, policy *cors.Policy, guard *auth.Guard, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost, http.MethodPut))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true}))
	r.Use(gate.Gate(auth.RoleAdmin, "Students"))

	write := guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true, RequireWrite: true})

	r.Get("/", h.ListHandler)
	r.Get("/{id}", h.GetHandler)
	r.With(write).Post("/", h.CreateHandler)
	r.With(write).Put("/{id}", h.UpdateHandler)
	r.With(write).Post("/{id}/admit", h.AdmitHandler)
	r.With(write).Post("/{id}/unassign-class", h.UnassignHandler)
	return r
}

// MyRoutes mounts the parent portal student endpoints under /me/students.
// Registration carries its own flag so admissions can close while parents
// still see their enrolled children.
func MyRoutes(h *Handler, policy *cors.Policy, guard *auth.Guard, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleParent}, RequireActive: true}))

	r.With(gate.Gate(auth.RoleParent, "Students")).Get("/", h.MyStudentsHandler)
	r.With(gate.Gate(auth.RoleParent, "Students")).Get("/{id}", h.MyStudentHandler)
	r.With(gate.Gate(auth.RoleParent, "StudentRegistration")).Post("/", h.RegisterHandler)
	return r
}
