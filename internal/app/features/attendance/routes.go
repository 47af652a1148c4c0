package attendance

import (
	"github.com/go-chi/chi/v5"

	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
)

// Routes builds the attendance endpoints. Mounted inside the teacher class
// router at /{classId}/attendance, which already enforces CORS and the
// teacher guard; only the Attendance gate is applied here.
func Routes(h *Handler, gate *flags.Service) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.Gate(auth.RoleTeacher, "Attendance"))

	r.Get("/", h.ListHandler)
	r.Post("/", h.MarkHandler)
	r.Get("/{recordId}", h.GetHandler)
	r.Put("/{recordId}", h.UpdateHandler)
	return r
}
