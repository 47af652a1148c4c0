package superadmin

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/gsdta/schoolapi/internal/app/system/audit"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

// Handler handles super-admin requests.
type Handler struct {
	users    UserStore
	flags    *flags.Service
	auditLog *audit.Logger
	trail    AuditStore
	valid    *validate.Validator
	logger   *zap.Logger
}

// NewHandler creates a super-admin handler.
func NewHandler(userStore UserStore, flagSvc *flags.Service, auditLog *audit.Logger, trail AuditStore, valid *validate.Validator, logger *zap.Logger) *Handler {
	return &Handler{users: userStore, flags: flagSvc, auditLog: auditLog, trail: trail, valid: valid, logger: logger}
}

// FlagsHandler handles GET /super-admin/feature-flags.
func (h *Handler) FlagsHandler(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, flagsResponse{Config: h.flags.Get(r.Context())})
}

// UpdateFlagsHandler handles PUT /super-admin/feature-flags. Unknown feature
// names for the role are rejected so typos don't silently create toggles
// nothing reads.
func (h *Handler) UpdateFlagsHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())

	var req updateFlagsRequest
	if !httpx.DecodeJSON(w, r, &req) {
		return
	}
	if ferrs := h.valid.Struct(req); ferrs != nil {
		httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input", validate.Join(ferrs))
		return
	}

	known := flags.Catalog[req.Role]
	updates := make(map[string]flags.Flag, len(req.Features))
	for name, enabled := range req.Features {
		found := false
		for _, f := range known {
			if f == name {
				found = true
				break
			}
		}
		if !found {
			httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input",
				"Unknown feature "+name+" for role "+req.Role)
			return
		}
		updates[name] = flags.Flag{Enabled: enabled}
	}

	cfg, err := h.flags.Update(r.Context(), req.Role, updates, ac.Token.UID)
	if err != nil {
		h.logger.Error("flag update failed", zap.String("role", req.Role), zap.Error(err))
		httpx.DomainErr(w, r, "feature-flags", err)
		return
	}

	h.auditLog.Action(r.Context(), ac.Token.UID, ac.Profile.Email,
		"feature_flags_updated", "featureFlags", req.Role,
		map[string]any{"features": req.Features}, audit.SeverityInfo)
	httpx.OK(w, http.StatusOK, flagsResponse{Config: cfg})
}

// AuditLogHandler handles GET /super-admin/audit-log.
func (h *Handler) AuditLogHandler(w http.ResponseWriter, r *http.Request) {
	f, ok := h.auditFilter(w, r)
	if !ok {
		return
	}
	entries, total, err := h.trail.ListEntries(r.Context(), f)
	if err != nil {
		h.logger.Error("audit list failed", zap.Error(err))
		httpx.DomainErr(w, r, "audit-log", err)
		return
	}
	httpx.OK(w, http.StatusOK, auditListResponse{Entries: entries, Total: total, Limit: f.Limit, Offset: f.Offset})
}

// AuditLogCSVHandler handles GET /super-admin/audit-log/export: the same
// filter as the list, served as a CSV attachment.
func (h *Handler) AuditLogCSVHandler(w http.ResponseWriter, r *http.Request) {
	f, ok := h.auditFilter(w, r)
	if !ok {
		return
	}
	f.Limit = 10000
	f.Offset = 0
	entries, _, err := h.trail.ListEntries(r.Context(), f)
	if err != nil {
		h.logger.Error("audit export failed", zap.Error(err))
		httpx.DomainErr(w, r, "audit-log", err)
		return
	}

	ac := auth.FromContext(r.Context())
	h.auditLog.Action(r.Context(), ac.Token.UID, ac.Profile.Email,
		"audit_log_exported", "auditLog", "", map[string]any{"rows": len(entries)}, audit.SeverityInfo)

	filename := "audit-log-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	httpx.Download(w, r, filename, "text/csv; charset=utf-8", audit.EntriesToCSV(entries))
}

// SecurityEventsHandler handles GET /super-admin/security/events.
func (h *Handler) SecurityEventsHandler(w http.ResponseWriter, r *http.Request) {
	limit := httpx.QueryInt(r, "limit", 100)
	offset := httpx.QueryInt(r, "offset", 0)
	events, total, err := h.trail.ListSecurityEvents(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("security event list failed", zap.Error(err))
		httpx.DomainErr(w, r, "security-events", err)
		return
	}
	httpx.OK(w, http.StatusOK, securityListResponse{Events: events, Total: total, Limit: limit, Offset: offset})
}

// AdminsHandler handles GET /super-admin/users/admins.
func (h *Handler) AdminsHandler(w http.ResponseWriter, r *http.Request) {
	admins, err := h.users.ListByRole(r.Context(), auth.RoleAdmin)
	if err != nil {
		h.logger.Error("admin list failed", zap.Error(err))
		httpx.DomainErr(w, r, "user", err)
		return
	}
	httpx.OK(w, http.StatusOK, userListResponse{Users: admins})
}

// PromoteHandler handles POST /super-admin/users/{uid}/promote: grants the
// admin role.
func (h *Handler) PromoteHandler(w http.ResponseWriter, r *http.Request) {
	h.roleChange(w, r, true)
}

// DemoteHandler handles POST /super-admin/users/{uid}/demote: revokes the
// admin role.
func (h *Handler) DemoteHandler(w http.ResponseWriter, r *http.Request) {
	h.roleChange(w, r, false)
}

func (h *Handler) roleChange(w http.ResponseWriter, r *http.Request, promote bool) {
	ac := auth.FromContext(r.Context())
	uid := chi.URLParam(r, "uid")

	var req userActionRequest
	if r.ContentLength > 0 && !httpx.DecodeJSON(w, r, &req) {
		return
	}

	if !promote && uid == ac.Token.UID {
		httpx.Err(w, r, http.StatusBadRequest, "user/invalid-status", "You cannot demote yourself")
		return
	}

	action := "admin_demoted"
	change := h.users.RemoveRole
	if promote {
		action = "admin_promoted"
		change = h.users.AddRole
	}
	u, err := change(r.Context(), uid, auth.RoleAdmin)
	if err != nil {
		httpx.DomainErr(w, r, "user", err)
		return
	}

	h.auditLog.Action(r.Context(), ac.Token.UID, ac.Profile.Email,
		action, "user", uid, map[string]any{"reason": req.Reason}, audit.SeverityWarning)
	h.logger.Info("role change", zap.String("action", action),
		zap.String("targetUid", uid), zap.String("actorUid", ac.Token.UID))
	httpx.OK(w, http.StatusOK, userResponse{User: u})
}

// SuspendHandler handles POST /super-admin/users/{uid}/emergency-suspend:
// immediately deactivates the account and records a critical security event.
func (h *Handler) SuspendHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	uid := chi.URLParam(r, "uid")

	var req userActionRequest
	if r.ContentLength > 0 && !httpx.DecodeJSON(w, r, &req) {
		return
	}

	if uid == ac.Token.UID {
		httpx.Err(w, r, http.StatusBadRequest, "user/invalid-status", "You cannot suspend yourself")
		return
	}

	u, err := h.users.SetStatus(r.Context(), uid, "suspended")
	if err != nil {
		httpx.DomainErr(w, r, "user", err)
		return
	}

	h.auditLog.Action(r.Context(), ac.Token.UID, ac.Profile.Email,
		"emergency_suspend", "user", uid, map[string]any{"reason": req.Reason}, audit.SeverityCritical)
	h.auditLog.Security(r.Context(), "emergency_suspend", uid, u.Email,
		map[string]any{"by": ac.Token.UID, "reason": req.Reason}, audit.SeverityCritical)
	httpx.OK(w, http.StatusOK, userResponse{User: u})
}

// ReinstateHandler handles POST /super-admin/users/{uid}/reinstate.
func (h *Handler) ReinstateHandler(w http.ResponseWriter, r *http.Request) {
	ac := auth.FromContext(r.Context())
	uid := chi.URLParam(r, "uid")

	u, err := h.users.SetStatus(r.Context(), uid, "active")
	if err != nil {
		httpx.DomainErr(w, r, "user", err)
		return
	}

	h.auditLog.Action(r.Context(), ac.Token.UID, ac.Profile.Email,
		"user_reinstated", "user", uid, nil, audit.SeverityWarning)
	httpx.OK(w, http.StatusOK, userResponse{User: u})
}

// ExportHandler handles GET /super-admin/users/{uid}/export: the user's
// account record as a JSON attachment.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	u, err := h.users.ByUID(r.Context(), uid)
	if err != nil {
		httpx.DomainErr(w, r, "user", err)
		return
	}

	body, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		httpx.Err(w, r, http.StatusInternalServerError, "internal/error", "Export failed")
		return
	}

	ac := auth.FromContext(r.Context())
	h.auditLog.Action(r.Context(), ac.Token.UID, ac.Profile.Email,
		"user_exported", "user", uid, nil, audit.SeverityInfo)
	httpx.Download(w, r, "user-"+uid+".json", "application/json", body)
}

// auditFilter parses the audit-log query parameters.
func (h *Handler) auditFilter(w http.ResponseWriter, r *http.Request) (audit.ListFilter, bool) {
	q := r.URL.Query()
	f := audit.ListFilter{
		ActorUID:   q.Get("actorUid"),
		Action:     q.Get("action"),
		TargetType: q.Get("targetType"),
		Severity:   q.Get("severity"),
		Limit:      httpx.QueryInt(r, "limit", 100),
		Offset:     httpx.QueryInt(r, "offset", 0),
	}
	for name, dst := range map[string]**time.Time{"from": &f.From, "to": &f.To} {
		if raw := q.Get(name); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				httpx.Err(w, r, http.StatusBadRequest, "validation/invalid-input",
					name+" must be an RFC3339 timestamp")
				return f, false
			}
			*dst = &t
		}
	}
	return f, true
}
