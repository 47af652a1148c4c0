package students

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	storestudents "github.com/gsdta/schoolapi/internal/app/store/students"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Handler handles student requests.
type Handler struct {
	students Store
	classes  ClassStore
	valid    *validate.Validator
	logger   *zap.Logger
}

// NewHandler creates a student handler.
func NewHandler(studentStore Store, classStore ClassStore, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{students: studentStore, classes: classStore, valid: valid, logger: logger}
}

// ListHandler handles GET /admin/students.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storestudents.ListFilter{
		Status:  q.Get("status"),
		ClassID: q.Get("classId"),
		Limit:   httpx.QueryInt(r, "limit", 100),
		Offset:  httpx.QueryInt(r, "offset", 0),
	}
	list, total, err := h.students.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("student list failed", zap.Error(err))
		httpx.DomainErr(w, r, "student", err)
		return
	}
	httpx.OK(w, http.StatusOK, studentListResponse{
		Students: list,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// CreateHandler handles POST /admin/students: an admin registering a student
// on a parent's behalf.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	st := &storestudents.Student{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		ParentID:    req.ParentID,
		GradeID:     req.GradeID,
		Notes:       req.Notes,
	}
	if err := h.students.Create(r.Context(), st); err != nil {
		h.logger.Error("student create failed", zap.Error(err))
		httpx.DomainErr(w, r, "student", err)
		return
	}
	h.logger.Info("student created", zap.String("studentId", st.ID), zap.String("parentId", st.ParentID))
	httpx.OK(w, http.StatusCreated, studentResponse{Student: st})
}

// GetHandler handles GET /admin/students/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	st, err := h.students.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "student", err)
		return
	}
	httpx.OK(w, http.StatusOK, studentResponse{Student: st})
}

// UpdateHandler handles PUT /admin/students/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req updateStudentRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	st, err := h.students.Update(r.Context(), chi.URLParam(r, "id"), storestudents.UpdateParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		GradeID:     req.GradeID,
		Notes:       req.Notes,
		Status:      req.Status,
	})
	if err != nil {
		httpx.DomainErr(w, r, "student", err)
		return
	}
	httpx.OK(w, http.StatusOK, studentResponse{Student: st})
}

// AdmitHandler handles POST /admin/students/{id}/admit.
func (h *Handler) AdmitHandler(w http.ResponseWriter, r *http.Request) {
	st, err := h.students.Admit(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "student", err)
		return
	}
	h.logger.Info("student admitted", zap.String("studentId", st.ID))
	httpx.OK(w, http.StatusOK, studentResponse{Student: st})
}

// UnassignHandler handles POST /admin/students/{id}/unassign-class. The
// released seat goes back to the class.
func (h *Handler) UnassignHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	existing, err := h.students.ByID(r.Context(), id)
	if err != nil {
		httpx.DomainErr(w, r, "student", err)
		return
	}
	if existing.ClassID == "" {
		httpx.Err(w, r, http.StatusBadRequest, "student/invalid-status", "Student is not assigned to a class")
		return
	}

	st, err := h.students.UnassignClass(r.Context(), id)
	if err != nil {
		httpx.DomainErr(w, r, "student", err)
		return
	}
	if err := h.classes.ReleaseSeat(r.Context(), existing.ClassID); err != nil {
		h.logger.Error("seat release failed", zap.String("classId", existing.ClassID), zap.Error(err))
	}
	httpx.OK(w, http.StatusOK, studentResponse{Student: st})
}

// MyStudentsHandler handles GET /me/students.
func (h *Handler) MyStudentsHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	list, err := h.students.ByParent(r.Context(), ac.Token.UID)
	if err != nil {
		h.logger.Error("parent student list failed", zap.String("uid", ac.Token.UID), zap.Error(err))
		httpx.DomainErr(w, r, "student", err)
		return
	}
	httpx.OK(w, http.StatusOK, studentListResponse{Students: list, Total: int64(len(list))})
}

// MyStudentHandler handles GET /me/students/{id}. Students owned by another
// parent read as missing.
func (h *Handler) MyStudentHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	st, err := h.students.ByIDForParent(r.Context(), chi.URLParam(r, "id"), ac.Token.UID)
	if err != nil {
		httpx.DomainErr(w, r, "student", err)
		return
	}
	httpx.OK(w, http.StatusOK, studentResponse{Student: st})
}

// RegisterHandler handles POST /me/students: a parent registering their own
// child. The student starts pending and waits for admin admission.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req registerStudentRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	st := &storestudents.Student{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		ParentID:    ac.Token.UID,
		GradeID:     req.GradeID,
		Notes:       req.Notes,
	}
	if err := h.students.Create(r.Context(), st); err != nil {
		h.logger.Error("student registration failed", zap.String("uid", ac.Token.UID), zap.Error(err))
		httpx.DomainErr(w, r, "student", err)
		return
	}
	h.logger.Info("student registered", zap.String("studentId", st.ID), zap.String("parentId", st.ParentID))
	httpx.OK(w, http.StatusCreated, studentResponse{Student: st})
}
