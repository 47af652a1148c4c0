package calendar

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	storecal "github.com/gsdta/schoolapi/internal/app/store/calendar"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Handler handles calendar requests.
type Handler struct {
	store  Store
	valid  *validate.Validator
	logger *zap.Logger
}

// NewHandler creates a calendar handler.
func NewHandler(store Store, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{store: store, valid: valid, logger: logger}
}

// ListHandler handles GET /admin/calendar.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storecal.ListFilter{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		EventType: q.Get("eventType"),
		Status:    q.Get("status"),
		Limit:     httpx.QueryInt(r, "limit", 100),
		Offset:    httpx.QueryInt(r, "offset", 0),
	}

	events, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("calendar list failed", zap.Error(err))
		httpx.DomainErr(w, r, "calendar", err)
		return
	}
	httpx.OK(w, http.StatusOK, eventListResponse{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// CreateHandler handles POST /admin/calendar.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req createEventRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	event := &storecal.Event{
		Title:             req.Title,
		Description:       req.Description,
		Date:              req.Date,
		EndDate:           req.EndDate,
		AllDay:            req.AllDay,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		EventType:         req.EventType,
		Recurrence:        req.Recurrence,
		RecurrenceEndDate: req.RecurrenceEndDate,
		Visibility:        req.Visibility,
		Location:          req.Location,
		CreatedBy:         ac.Token.UID,
		CreatedByName:     ac.Profile.DisplayName(),
	}
	if err := h.store.Create(r.Context(), event); err != nil {
		h.logger.Error("calendar create failed", zap.String("uid", ac.Token.UID), zap.Error(err))
		httpx.DomainErr(w, r, "calendar", err)
		return
	}

	h.logger.Info("calendar event created",
		zap.String("eventId", event.ID),
		zap.String("uid", ac.Token.UID),
	)
	httpx.OK(w, http.StatusCreated, eventResponse{Event: event})
}

// GetHandler handles GET /admin/calendar/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	event, err := h.store.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "calendar", err)
		return
	}
	httpx.OK(w, http.StatusOK, eventResponse{Event: event})
}

// UpdateHandler handles PUT /admin/calendar/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	event, err := h.store.Update(r.Context(), chi.URLParam(r, "id"), storecal.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		EndDate:     req.EndDate,
		AllDay:      req.AllDay,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		EventType:   req.EventType,
		Visibility:  req.Visibility,
		Location:    req.Location,
		Status:      req.Status,
	})
	if err != nil {
		httpx.DomainErr(w, r, "calendar", err)
		return
	}
	httpx.OK(w, http.StatusOK, eventResponse{Event: event})
}

// DeleteHandler handles DELETE /admin/calendar/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(r.Context(), id); err != nil {
		httpx.DomainErr(w, r, "calendar", err)
		return
	}
	h.logger.Info("calendar event deleted", zap.String("eventId", id))
	httpx.OK(w, http.StatusOK, map[string]any{"deleted": true})
}

// PublicListHandler handles GET /calendar: events visible to the public,
// active only.
func (h *Handler) PublicListHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := storecal.ListFilter{
		StartDate:  q.Get("startDate"),
		EndDate:    q.Get("endDate"),
		EventType:  q.Get("eventType"),
		Status:     "active",
		Visibility: "public",
		Limit:      httpx.QueryInt(r, "limit", 100),
		Offset:     httpx.QueryInt(r, "offset", 0),
	}
	events, total, err := h.store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("public calendar list failed", zap.Error(err))
		httpx.DomainErr(w, r, "calendar", err)
		return
	}
	httpx.OK(w, http.StatusOK, eventListResponse{
		Events: events,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}
