package superadmin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
)

// Routes mounts the super-admin console under /super-admin. The whole area
// requires the super_admin role; there is no feature gate because the
// console is where the gates themselves are managed.
func Routes(h *Handler, policy *cors.Policy, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Use(policy.Middleware(http.MethodGet, http.MethodPost, http.MethodPut))
	r.Use(guard.Middleware(auth.Options{Roles: []string{auth.RoleSuperAdmin}, RequireActive: true}))

	r.Get("/feature-flags", h.FlagsHandler)
	r.Put("/feature-flags", h.UpdateFlagsHandler)

	r.Get("/audit-log", h.AuditLogHandler)
	r.Get("/audit-log/export", h.AuditLogCSVHandler)
	r.Get("/security/events", h.SecurityEventsHandler)

	r.Get("/users/admins", h.AdminsHandler)
	r.Post("/users/{uid}/promote", h.PromoteHandler)
	r.Post("/users/{uid}/demote", h.DemoteHandler)
	r.Post("/users/{uid}/emergency-suspend", h.SuspendHandler)
	r.Post("/users/{uid}/reinstate", h.ReinstateHandler)
	r.Get("/users/{uid}/export", h.ExportHandler)
	return r
}
