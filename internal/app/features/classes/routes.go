package classes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
)

// Routes mounts the admin class endpoints.
func Routes(h *Handler, policy *cors.Policy, guard *auth.Guard, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost, http.MethodPut))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true}))
	r.Use(gate.Gate(auth.RoleAdmin, "Classes"))

	write := guard.Middleware(auth.Options{Roles: []string{auth.RoleAdmin}, RequireActive: true, RequireWrite: true})

	r.Get("/", h.ListHandler)
	r.Get("/{id}", h.GetHandler)
	r.Get("/{id}/students", h.RosterHandler)
	r.With(write).Post("/", h.CreateHandler)
	r.With(write).Put("/{id}", h.UpdateHandler)
	r.With(write).Post("/{id}/students", h.AssignStudentsHandler)
	r.With(write).Post("/{id}/teachers", h.AssignTeacherHandler)
	return r
}

// TeacherRoutes mounts the teacher's class endpoints. The attendance router
// nests under /{classId}/attendance with its own feature gate.
func TeacherRoutes(h *Handler, attendance http.Handler, policy *cors.Policy, guard *auth.Guard, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost, http.MethodPut))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleTeacher}, RequireActive: true}))

	classGate := gate.Gate(auth.RoleTeacher, "Classes")
	r.With(classGate).Get("/", h.TeacherListHandler)
	r.With(classGate).Get("/{classId}/students", h.TeacherRosterHandler)
	r.Mount("/{classId}/attendance", attendance)
	return r
}
