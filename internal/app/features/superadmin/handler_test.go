package superadmin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	"github.com/gsdta/schoolapi/internal/app/store/users"
	"github.com/gsdta/schoolapi/internal/app/system/audit"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

type fakeUserStore struct {
	users map[string]*users.User
}

func (f *fakeUserStore) ByUID(_ context.Context, uid string) (*users.User, error) {
	u, ok := f.users[uid]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) AddRole(ctx context.Context, uid, role string) (*users.User, error) {
	u, err := f.ByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	u.Roles = append(u.Roles, role)
	return u, nil
}

func (f *fakeUserStore) RemoveRole(ctx context.Context, uid, role string) (*users.User, error) {
	u, err := f.ByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	kept := u.Roles[:0]
	for _, r := range u.Roles {
		if r != role {
			kept = append(kept, r)
		}
	}
	u.Roles = kept
	return u, nil
}

func (f *fakeUserStore) SetStatus(ctx context.Context, uid, status string) (*users.User, error) {
	u, err := f.ByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	u.Status = status
	return u, nil
}

func (f *fakeUserStore) ListByRole(_ context.Context, role string) ([]users.User, error) {
	out := []users.User{}
	for _, u := range f.users {
		for _, r := range u.Roles {
			if r == role {
				out = append(out, *u)
			}
		}
	}
	return out, nil
}

type fakeAuditStore struct {
	entries []audit.Entry
	events  []audit.SecurityEvent
}

func (f *fakeAuditStore) InsertEntry(_ context.Context, e audit.Entry) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditStore) InsertSecurityEvent(_ context.Context, e audit.SecurityEvent) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeAuditStore) ListEntries(context.Context, audit.ListFilter) ([]audit.Entry, int64, error) {
	return f.entries, int64(len(f.entries)), nil
}

func (f *fakeAuditStore) ListSecurityEvents(context.Context, int, int) ([]audit.SecurityEvent, int64, error) {
	return f.events, int64(len(f.events)), nil
}

type fakeFlagStore struct{ cfg *flags.Config }

func (f *fakeFlagStore) Load(context.Context) (*flags.Config, error) { return f.cfg, nil }
func (f *fakeFlagStore) Save(_ context.Context, role string, updates map[string]flags.Flag, updatedBy string) error {
	for name, flag := range updates {
		f.cfg.Roles[role][name] = flag
	}
	f.cfg.UpdatedBy = updatedBy
	return nil
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(string) (*auth.Claims, error) {
	return &auth.Claims{UID: "sa-1", Email: "sa@example.org"}, nil
}

type fakeProfiles struct{}

func (fakeProfiles) ProfileByUID(_ context.Context, uid string) (*auth.Profile, error) {
	return &auth.Profile{UID: uid, Email: "sa@example.org",
		Roles: []string{auth.RoleSuperAdmin}, Status: "active"}, nil
}

type fixture struct {
	users  *fakeUserStore
	trail  *fakeAuditStore
	flags  *fakeFlagStore
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	userStore := &fakeUserStore{users: map[string]*users.User{
		"sa-1":  {UID: "sa-1", Email: "sa@example.org", Roles: []string{auth.RoleSuperAdmin, auth.RoleAdmin}, Status: "active"},
		"u-2":   {UID: "u-2", Email: "teacher@example.org", Roles: []string{auth.RoleTeacher}, Status: "active"},
		"adm-3": {UID: "adm-3", Email: "admin@example.org", Roles: []string{auth.RoleAdmin}, Status: "active"},
	}}
	trail := &fakeAuditStore{}
	flagStore := &fakeFlagStore{cfg: flags.DefaultConfig()}
	flagSvc := flags.NewService(flagStore, zap.NewNop(), time.Minute)
	h := NewHandler(userStore, flagSvc, audit.NewLogger(trail, zap.NewNop()), trail, validate.New(), zap.NewNop())
	guard := auth.NewGuard(fakeVerifier{}, fakeProfiles{}, zap.NewNop())
	return &fixture{
		users:  userStore,
		trail:  trail,
		flags:  flagStore,
		router: Routes(h, cors.New("dev", nil), guard),
	}
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUpdateFlags(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodPut, "/feature-flags",
		`{"role": "parent", "features": {"StudentRegistration": false}}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, fx.flags.cfg.Roles[auth.RoleParent]["StudentRegistration"].Enabled)
	assert.Equal(t, "sa-1", fx.flags.cfg.UpdatedBy)

	require.Len(t, fx.trail.entries, 1)
	assert.Equal(t, "feature_flags_updated", fx.trail.entries[0].Action)
}

func TestUpdateFlagsUnknownFeature(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodPut, "/feature-flags",
		`{"role": "parent", "features": {"StudentRegistratoin": false}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "validation/invalid-input", env.Code)
	assert.Contains(t, env.Message, "StudentRegistratoin")
	assert.True(t, fx.flags.cfg.Roles[auth.RoleParent]["StudentRegistration"].Enabled,
		"a rejected update must not change anything")
}

func TestUpdateFlagsBadRole(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodPut, "/feature-flags",
		`{"role": "super_admin", "features": {"Students": false}}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation/invalid-input", envelope(t, rec).Code)
}

func TestPromote(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodPost, "/users/u-2/promote", `{"reason": "new coordinator"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, fx.users.users["u-2"].Roles, auth.RoleAdmin)
	require.Len(t, fx.trail.entries, 1)
	assert.Equal(t, "admin_promoted", fx.trail.entries[0].Action)
	assert.Equal(t, "u-2", fx.trail.entries[0].TargetID)
}

func TestSelfDemoteBlocked(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodPost, "/users/sa-1/demote", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "user/invalid-status", envelope(t, rec).Code)
	assert.Contains(t, fx.users.users["sa-1"].Roles, auth.RoleAdmin, "self demote must not go through")
}

func TestEmergencySuspend(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodPost, "/users/adm-3/emergency-suspend",
		`{"reason": "compromised account"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "suspended", fx.users.users["adm-3"].Status)

	require.Len(t, fx.trail.entries, 1)
	assert.Equal(t, audit.SeverityCritical, fx.trail.entries[0].Severity)
	require.Len(t, fx.trail.events, 1)
	assert.Equal(t, "emergency_suspend", fx.trail.events[0].Type)
}

func TestSelfSuspendBlocked(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodPost, "/users/sa-1/emergency-suspend", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "active", fx.users.users["sa-1"].Status)
}

func TestAuditLogBadTimestamp(t *testing.T) {
	fx := newFixture(t)

	rec := doJSON(fx.router, http.MethodGet, "/audit-log?from=yesterday", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "validation/invalid-input", env.Code)
	assert.Contains(t, env.Message, "RFC3339")
}

func TestAuditLogCSVExport(t *testing.T) {
	fx := newFixture(t)
	fx.trail.entries = []audit.Entry{{
		ID: "e1", ActorUID: "sa-1", Action: "admin_promoted", TargetType: "user", TargetID: "u-2",
		Severity: audit.SeverityWarning, CreatedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}}

	rec := doJSON(fx.router, http.MethodGet, "/audit-log/export", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, rec.Body.String(), "admin_promoted")

	// The export itself lands in the trail.
	require.Len(t, fx.trail.entries, 2)
	assert.Equal(t, "audit_log_exported", fx.trail.entries[1].Action)
}
