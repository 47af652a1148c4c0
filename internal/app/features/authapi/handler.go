package authapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	"github.com/gsdta/schoolapi/internal/app/store/users"
	"github.com/gsdta/schoolapi/internal/app/system/audit"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Handler handles authentication requests.
type Handler struct {
	users  UserStore
	tokens TokenIssuer
	audit  *audit.Logger
	valid  *validate.Validator
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(userStore UserStore, tokens TokenIssuer, auditLog *audit.Logger, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{users: userStore, tokens: tokens, audit: auditLog, valid: valid, logger: logger}
}

// LoginHandler handles POST /auth/login. Wrong email and wrong password
// produce the same response so credentials cannot be probed.
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	u, err := h.users.ByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			h.audit.Security(r.Context(), "login_failed", "", req.Email,
				map[string]any{"reason": "unknown email"}, audit.SeverityWarning)
			httpx.Err(w, r, http.StatusUnauthorized, "auth/invalid-credentials", "Invalid email or password")
			return
		}
		h.logger.Error("login lookup failed", zap.Error(err))
		httpx.Err(w, r, http.StatusInternalServerError, "internal/error", "Login failed")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		h.audit.Security(r.Context(), "login_failed", u.UID, u.Email,
			map[string]any{"reason": "wrong password"}, audit.SeverityWarning)
		httpx.Err(w, r, http.StatusUnauthorized, "auth/invalid-credentials", "Invalid email or password")
		return
	}

	if u.Status != "active" {
		h.audit.Security(r.Context(), "login_blocked", u.UID, u.Email,
			map[string]any{"status": u.Status}, audit.SeverityWarning)
		httpx.Err(w, r, http.StatusForbidden, "auth/forbidden", "Account is not active")
		return
	}

	token, err := h.tokens.Issue(u.UID, u.Email, true)
	if err != nil {
		h.logger.Error("token issue failed", zap.String("uid", u.UID), zap.Error(err))
		httpx.Err(w, r, http.StatusInternalServerError, "internal/error", "Login failed")
		return
	}

	h.logger.Info("login", zap.String("uid", u.UID))
	httpx.OK(w, http.StatusOK, loginResponse{Token: token, User: u})
}

// RegisterHandler handles POST /auth/register. New accounts get the parent
// role; staff roles are granted by a super admin afterwards.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.Error("password hash failed", zap.Error(err))
		httpx.Err(w, r, http.StatusInternalServerError, "internal/error", "Registration failed")
		return
	}

	u := &users.User{
		UID:          uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Roles:        []string{auth.RoleParent},
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		if errors.Is(err, errs.ErrAlreadyExists) {
			httpx.Err(w, r, http.StatusConflict, "auth/email-in-use", "An account with this email already exists")
			return
		}
		h.logger.Error("user create failed", zap.Error(err))
		httpx.Err(w, r, http.StatusInternalServerError, "internal/error", "Registration failed")
		return
	}

	token, err := h.tokens.Issue(u.UID, u.Email, false)
	if err != nil {
		h.logger.Error("token issue failed", zap.String("uid", u.UID), zap.Error(err))
		httpx.Err(w, r, http.StatusInternalServerError, "internal/error", "Registration failed")
		return
	}

	h.logger.Info("user registered", zap.String("uid", u.UID))
	httpx.OK(w, http.StatusCreated, loginResponse{Token: token, User: u})
}

// MeHandler handles GET /me.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	u, err := h.users.ByUID(r.Context(), ac.Token.UID)
	if err != nil {
		httpx.DomainErr(w, r, "user", err)
		return
	}
	httpx.OK(w, http.StatusOK, meResponse{User: u})
}
