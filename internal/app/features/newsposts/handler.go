package newsposts

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	storeposts "github.com/gsdta/schoolapi/internal/app/store/newsposts"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Handler handles news post requests.
type Handler struct {
	posts  Store
	valid  *validate.Validator
	logger *zap.Logger
}

// NewHandler creates a news post handler.
func NewHandler(posts Store, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{posts: posts, valid: valid, logger: logger}
}

// --- teacher authoring ---

// CreateHandler handles POST /teacher/news-posts: a new draft.
func (h *Handler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req createPostRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	post := &storeposts.Post{
		Title:      req.Title,
		Body:       req.Body,
		AuthorUID:  ac.Token.UID,
		AuthorName: ac.Profile.DisplayName(),
	}
	if err := h.posts.Create(r.Context(), post); err != nil {
		h.logger.Error("post create failed", zap.String("uid", ac.Token.UID), zap.Error(err))
		httpx.DomainErr(w, r, "post", err)
		return
	}
	h.logger.Info("post drafted", zap.String("postId", post.ID), zap.String("uid", ac.Token.UID))
	httpx.OK(w, http.StatusCreated, postResponse{Post: post})
}

// MyPostsHandler handles GET /teacher/news-posts: the caller's own posts.
func (h *Handler) MyPostsHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	limit := httpx.QueryInt(r, "limit", 50)
	offset := httpx.QueryInt(r, "offset", 0)

	posts, total, err := h.posts.List(r.Context(), r.URL.Query().Get("status"), ac.Token.UID, limit, offset)
	if err != nil {
		h.logger.Error("post list failed", zap.String("uid", ac.Token.UID), zap.Error(err))
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postListResponse{Posts: posts, Total: total, Limit: limit, Offset: offset})
}

// UpdateHandler handles PUT /teacher/news-posts/{id}: editing an own draft.
func (h *Handler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req createPostRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	post, err := h.posts.UpdateDraft(r.Context(), chi.URLParam(r, "id"), ac.Token.UID, req.Title, req.Body)
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}

// SubmitHandler handles POST /teacher/news-posts/{id}/submit.
func (h *Handler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	post, err := h.posts.SubmitForReview(r.Context(), chi.URLParam(r, "id"), ac.Token.UID)
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	h.logger.Info("post submitted for review", zap.String("postId", post.ID), zap.String("uid", ac.Token.UID))
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}

// --- admin review ---

// ListHandler handles GET /admin/news-posts.
func (h *Handler) ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", 50)
	offset := httpx.QueryInt(r, "offset", 0)

	posts, total, err := h.posts.List(r.Context(), r.URL.Query().Get("status"), "", limit, offset)
	if err != nil {
		h.logger.Error("post list failed", zap.Error(err))
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postListResponse{Posts: posts, Total: total, Limit: limit, Offset: offset})
}

// GetHandler handles GET /admin/news-posts/{id}.
func (h *Handler) GetHandler(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.ByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}

// ReviewHandler handles POST /admin/news-posts/{id}/review. A rejection
// without a reason fails validation before any state changes.
func (h *Handler) ReviewHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req reviewPostRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	post, err := h.posts.Review(r.Context(), chi.URLParam(r, "id"),
		req.Action == "approve", req.RejectionReason, ac.Token.UID)
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	h.logger.Info("post reviewed",
		zap.String("postId", post.ID),
		zap.String("action", req.Action),
		zap.String("reviewer", ac.Token.UID),
	)
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}

// PublishHandler handles POST /admin/news-posts/{id}/publish.
func (h *Handler) PublishHandler(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Publish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	h.logger.Info("post published", zap.String("postId", post.ID), zap.String("slug", post.Slug))
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}

// UnpublishHandler handles POST /admin/news-posts/{id}/unpublish.
func (h *Handler) UnpublishHandler(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.Unpublish(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}

// PinHandler handles POST /admin/news-posts/{id}/pin.
func (h *Handler) PinHandler(w http.ResponseWriter, r *http.Request) {
	var req pinPostRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	post, err := h.posts.SetPinned(r.Context(), chi.URLParam(r, "id"), req.Pinned)
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}

// DeleteHandler handles DELETE /admin/news-posts/{id}.
func (h *Handler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.posts.Delete(r.Context(), id); err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	h.logger.Info("post deleted", zap.String("postId", id))
	httpx.OK(w, http.StatusOK, map[string]any{"deleted": true})
}

// --- public feed ---

// PublicListHandler handles GET /news-posts: published posts only.
func (h *Handler) PublicListHandler(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", 50)
	offset := httpx.QueryInt(r, "offset", 0)

	posts, total, err := h.posts.List(r.Context(), storeposts.StatusPublished, "", limit, offset)
	if err != nil {
		h.logger.Error("public post list failed", zap.Error(err))
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postListResponse{Posts: posts, Total: total, Limit: limit, Offset: offset})
}

// PublicGetHandler handles GET /news-posts/{slug}: one published post; each
// read bumps the view counter.
func (h *Handler) PublicGetHandler(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.IncrementViews(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.DomainErr(w, r, "post", err)
		return
	}
	httpx.OK(w, http.StatusOK, postResponse{Post: post})
}
