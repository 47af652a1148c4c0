package attendance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	storeatt "github.com/gsdta/schoolapi/internal/app/store/attendance"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Handler handles attendance requests.
type Handler struct {
	records Store
	classes ClassStore
	valid   *validate.Validator
	logger  *zap.Logger
}

// NewHandler creates an attendance handler.
func NewHandler(records Store, classes ClassStore, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{records: records, classes: classes, valid: valid, logger: logger}
}

// requireAssigned confirms the caller teaches the class. A class they are
// not assigned to reads as missing.
func (h *Handler) requireAssigned(w http.ResponseWriter, r *http.Request, classID string) bool {
	ac := auth.FromContext(r.Context())
	ok, err := h.classes.IsTeacherAssigned(r.Context(), classID, ac.Token.UID)
	if err != nil {
		httpx.DomainErr(w, r, "class", err)
		return false
	}
	if !ok {
		httpx.Err(w, r, http.StatusNotFound, "class/not-found", "Class not found")
		return false
	}
	return true
}

// ListHandler handles GET /teacher/classes/{classId}/attendance.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !h.requireAssigned(w, r, classID) {
		return
	}

	q := r.URL.Query()
	records, err := h.records.List(r.Context(), classID,
		q.Get("startDate"), q.Get("endDate"), httpx.QueryInt(r, "limit", 100))
	if err != nil {
		h.logger.Error("attendance list failed", zap.String("classId", classID), zap.Error(err))
		httpx.DomainErr(w, r, "attendance", err)
		return
	}
	httpx.OK(w, http.StatusOK, recordListResponse{Records: records})
}

// MarkHandler handles POST /teacher/classes/{classId}/attendance: one sheet
// per class per date.
func (h *Handler) MarkHandler(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !h.requireAssigned(w, r, classID) {
		return
	}

	var req markAttendanceRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	ac := auth.FromContext(r.Context())
	rec := &storeatt.Record{
		ClassID:    classID,
		Date:       req.Date,
		Entries:    toEntries(req.Entries),
		MarkedBy:   ac.Token.UID,
		MarkedName: ac.Profile.DisplayName(),
	}
	if err := h.records.Create(r.Context(), rec); err != nil {
		httpx.DomainErr(w, r, "attendance", err)
		return
	}
	h.logger.Info("attendance marked",
		zap.String("classId", classID),
		zap.String("date", req.Date),
		zap.Int("entries", len(rec.Entries)),
	)
	httpx.OK(w, http.StatusCreated, recordResponse{Record: rec})
}

// GetHandler handles GET /teacher/classes/{classId}/attendance/{recordId}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !h.requireAssigned(w, r, classID) {
		return
	}

	rec, err := h.records.ByID(r.Context(), classID, chi.URLParam(r, "recordId"))
	if err != nil {
		httpx.DomainErr(w, r, "attendance", err)
		return
	}
	httpx.OK(w, http.StatusOK, recordResponse{Record: rec})
}

// UpdateHandler handles PUT /teacher/classes/{classId}/attendance/{recordId}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	classID := chi.URLParam(r, "classId")
	if !h.requireAssigned(w, r, classID) {
		return
	}

	var req updateAttendanceRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	ac := auth.FromContext(r.Context())
	rec, err := h.records.UpdateEntries(r.Context(), classID, chi.URLParam(r, "recordId"),
		toEntries(req.Entries), ac.Token.UID, ac.Profile.DisplayName())
	if err != nil {
		httpx.DomainErr(w, r, "attendance", err)
		return
	}
	httpx.OK(w, http.StatusOK, recordResponse{Record: rec})
}

func toEntries(in []entryInput) []storeatt.Entry {
	out := make([]storeatt.Entry, len(in))
	for i, e := range in {
		out[i] = storeatt.Entry{StudentID: e.StudentID, Status: e.Status, Note: e.Note}
	}
	return out
}
