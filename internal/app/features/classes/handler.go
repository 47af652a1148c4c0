package classes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	storeclasses "github.com/gsdta/schoolapi/internal/app/store/classes"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Handler handles class requests.
type Handler struct {
	classes  ClassStore
	students StudentStore
	users    UserStore
	valid    *validate.Validator
	logger   *zap.Logger
}

// NewHandler creates a class handler.
func NewHandler(classStore ClassStore, studentStore StudentStore, users UserStore, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{classes: classStore, students: studentStore, users: users, valid: valid, logger: logger}
}

// ListHandler handles GET /admin/classes.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", 100)
	offset := httpx.QueryInt(r, "offset", 0)
	list, total, err := h.classes.List(r.Context(), r.URL.Query().Get("status"), limit, offset)
	if err != nil {
		h.logger.Error("class list failed", zap.Error(err))
		httpx.DomainErr(w, r, "class", err)
		return
	}
	httpx.OK(w, http.StatusOK, classListResponse{Classes: list, Total: total, Limit: limit, Offset: offset})
}

// CreateHandler handles POST /admin/classes.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createClassRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	class, err := h.classes.Create(r.Context(), storeclasses.CreateParams{
		Name:     req.Name,
		GradeID:  req.GradeID,
		Schedule: req.Schedule,
		Capacity: req.Capacity,
	})
	if err != nil {
		h.logger.Error("class create failed", zap.Error(err))
		httpx.DomainErr(w, r, "class", err)
		return
	}
	h.logger.Info("class created", zap.String("classId", class.ID), zap.String("name", class.Name))
	httpx.OK(w, http.StatusCreated, classResponse{Class: class})
}

// GetHandler handles GET /admin/classes/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	class, err := h.classes.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}
	httpx.OK(w, http.StatusOK, classResponse{Class: class})
}

// UpdateHandler handles PUT /admin/classes/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req updateClassRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	id := chi.URLParam(r, "id")
	if req.Capacity != nil {
		// Capacity cannot shrink below the current roster.
		existing, err := h.classes.ByID(r.Context(), id)
		if err != nil {
			httpx.DomainErr(w, r, "class", err)
			return
		}
		if *req.Capacity < existing.Enrolled {
			httpx.Err(w, r, http.StatusBadRequest, "class/capacity-exceeded",
				"Capacity cannot be lower than current enrollment")
			return
		}
	}

	class, err := h.classes.Update(r.Context(), id, storeclasses.UpdateParams{
		Name:     req.Name,
		Schedule: req.Schedule,
		Capacity: req.Capacity,
		Status:   req.Status,
	})
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}
	httpx.OK(w, http.StatusOK, classResponse{Class: class})
}

// AssignStudentsHandler handles POST /admin/classes/{id}/students.
// Seats for the whole batch are reserved up front in one atomic update, so
// two admins filling the last spots cannot both succeed. Per-student
// assignment failures release their seat and are reported individually; a
// mixed outcome returns 207.
func (h *Handler) AssignStudentsHandler(w http.ResponseWriter, r *http.Request) {
	var req assignStudentsRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	id := chi.URLParam(r, "id")
	class, err := h.classes.ReserveSeats(r.Context(), id, len(req.StudentIDs))
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}

	results := make([]assignResult, 0, len(req.StudentIDs))
	assigned, failed := 0, 0
	for _, sid := range req.StudentIDs {
		if _, err := h.students.AssignClass(r.Context(), sid, class.ID, class.Name); err != nil {
			failed++
			results = append(results, assignResult{StudentID: sid, Error: publicAssignError(err)})
			if relErr := h.classes.ReleaseSeat(r.Context(), id); relErr != nil {
				h.logger.Error("seat release failed", zap.String("classId", id), zap.Error(relErr))
			}
			continue
		}
		assigned++
		results = append(results, assignResult{StudentID: sid, Assigned: true})
	}

	class, err = h.classes.ByID(r.Context(), id)
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}

	h.logger.Info("students assigned to class",
		zap.String("classId", id),
		zap.Int("assigned", assigned),
		zap.Int("failed", failed),
	)

	resp := assignStudentsResponse{Class: class, Results: results, Assigned: assigned, Failed: failed}
	switch {
	case assigned == 0:
		httpx.Err(w, r, http.StatusBadRequest, "class/assignment-failed", "No students could be assigned")
	case failed > 0:
		httpx.OK(w, http.StatusMultiStatus, resp)
	default:
		httpx.OK(w, http.StatusOK, resp)
	}
}

// AssignTeacherHandler handles POST /admin/classes/{id}/teachers.
func (h *Handler) AssignTeacherHandler(w http.ResponseWriter, r *http.Request) {
	var req assignTeacherRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	name, err := h.users.DisplayNameByUID(r.Context(), req.TeacherUID)
	if err != nil {
		httpx.DomainErr(w, r, "teacher", err)
		return
	}

	role := req.Role
	if role == "" {
		role = "primary"
	}
	class, err := h.classes.AssignTeacher(r.Context(), chi.URLParam(r, "id"), storeclasses.Teacher{
		UID:  req.TeacherUID,
		Name: name,
		Role: role,
	})
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}
	h.logger.Info("teacher assigned to class",
		zap.String("classId", class.ID),
		zap.String("teacherUid", req.TeacherUID),
	)
	httpx.OK(w, http.StatusOK, classResponse{Class: class})
}

// RosterHandler handles GET /admin/classes/{id}/students.
func (h *Handler) RosterHandler(w http.ResponseWriter, r *http.Request) {
	class, err := h.classes.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}
	roster, err := h.students.ByClass(r.Context(), class.ID)
	if err != nil {
		h.logger.Error("roster load failed", zap.String("classId", class.ID), zap.Error(err))
		httpx.DomainErr(w, r, "class", err)
		return
	}
	httpx.OK(w, http.StatusOK, rosterResponse{Class: class, Students: roster})
}

// TeacherListHandler handles GET /teacher/classes: classes the caller is
// assigned to.
func (h *Handler) TeacherListHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	list, err := h.classes.ListByTeacher(r.Context(), ac.Token.UID)
	if err != nil {
		h.logger.Error("teacher class list failed", zap.String("uid", ac.Token.UID), zap.Error(err))
		httpx.DomainErr(w, r, "class", err)
		return
	}
	httpx.OK(w, http.StatusOK, classListResponse{Classes: list, Total: int64(len(list))})
}

// TeacherRosterHandler handles GET /teacher/classes/{classId}/students. A
// class the caller is not assigned to reads as missing.
func (h *Handler) TeacherRosterHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	id := chi.URLParam(r, "classId")

	ok, err := h.classes.IsTeacherAssigned(r.Context(), id, ac.Token.UID)
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}
	if !ok {
		httpx.Err(w, r, http.StatusNotFound, "class/not-found", "Class not found")
		return
	}

	class, err := h.classes.ByID(r.Context(), id)
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return
	}
	roster, err := h.students.ByClass(r.Context(), id)
	if err != nil {
		h.logger.Error("roster load failed", zap.String("classId", id), zap.Error(err))
		httpx.DomainErr(w, r, "class", err)
		return
	}
	httpx.OK(w, http.StatusOK, rosterResponse{Class: class, Students: roster})
}

func publicAssignError(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
