package flashnews

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	storeflash "github.com/gsdta/schoolapi/internal/app/store/flashnews"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// supported are the languages the marquee can render, English first as the
// fallback.
var supported = []language.Tag{language.English, language.Tamil}

var langMatcher = language.NewMatcher(supported)

// Handler handles flash news requests.
type Handler struct {
	items  Store
	valid  *validate.Validator
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a flash news handler.
func NewHandler(items Store, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{items: items, valid: valid, logger: logger, now: time.Now}
}

// ListHandler handles GET /admin/flash-news.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.List(r.Context())
	if err != nil {
		h.logger.Error("flash news list failed", zap.Error(err))
		httpx.DomainErr(w, r, "flash-news", err)
		return
	}
	httpx.OK(w, http.StatusOK, itemListResponse{Items: items})
}

// CreateHandler handles POST /admin/flash-news.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req createItemRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	item := &storeflash.Item{
		Text:      req.Text,
		Link:      req.Link,
		Active:    req.Active,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Order:     req.Order,
		CreatedBy: ac.Token.UID,
	}
	if err := h.items.Create(r.Context(), item); err != nil {
		h.logger.Error("flash news create failed", zap.String("uid", ac.Token.UID), zap.Error(err))
		httpx.DomainErr(w, r, "flash-news", err)
		return
	}
	httpx.OK(w, http.StatusCreated, itemResponse{Item: item})
}

// GetHandler handles GET /admin/flash-news/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	item, err := h.items.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "flash-news", err)
		return
	}
	httpx.OK(w, http.StatusOK, itemResponse{Item: item})
}

// UpdateHandler handles PUT /admin/flash-news/{id}.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	item, err := h.items.Update(r.Context(), chi.URLParam(r, "id"), storeflash.UpdateParams{
		Text:      req.Text,
		Link:      req.Link,
		Active:    req.Active,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Order:     req.Order,
	})
	if err != nil {
		httpx.DomainErr(w, r, "flash-news", err)
		return
	}
	httpx.OK(w, http.StatusOK, itemResponse{Item: item})
}

// DeleteHandler handles DELETE /admin/flash-news/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.items.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.DomainErr(w, r, "flash-news", err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]any{"deleted": true})
}

// PublicListHandler handles GET /flash-news: items inside their display
// window, text resolved against the caller's Accept-Language (the ?lang
// query wins when present).
func (h *Handler) PublicListHandler(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListActive(r.Context(), h.now().UTC().Format("2006-01-02"))
	if err != nil {
		h.logger.Error("public flash news list failed", zap.Error(err))
		httpx.DomainErr(w, r, "flash-news", err)
		return
	}

	lang := resolveLang(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
	out := make([]publicItem, len(items))
	for i, it := range items {
		out[i] = publicItem{ID: it.ID, Text: it.Text.Pick(lang), Link: it.Link}
	}
	httpx.OK(w, http.StatusOK, publicListResponse{Items: out, Lang: lang})
}

// resolveLang maps the query override or Accept-Language header to "en" or
// "ta".
func resolveLang(query, header string) string {
	if query != "" {
		header = query
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, _ := langMatcher.Match(tags...)
	if supported[idx] == language.Tamil {
		return "ta"
	}
	return "en"
}
