package calendar

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

	storecal "github.com/gsdta/schoolapi/internal/app/store/calendar"
	"github.com/gsdta/schoolapi/internal/app/store/errs"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

type fakeStore struct {
	events  map[string]*storecal.Event
	created []*storecal.Event
}

func newFakeStore() *fakeStore {
	return &fakeStore{events: map[string]*storecal.Event{}}
}

func (f *fakeStore) Create(_ context.Context, e *storecal.Event) error {
	e.ID = "evt-1"
	e.Status = "active"
	e.CreatedAt = time.Now().UTC()
	f.events[e.ID] = e
	f.created = append(f.created, e)
	return nil
}

func (f *fakeStore) ByID(_ context.Context, id string) (*storecal.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) List(_ context.Context, _ storecal.ListFilter) ([]storecal.Event, int64, error) {
	out := make([]storecal.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) Update(_ context.Context, id string, _ storecal.UpdateParams) (*storecal.Event, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return e, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	if _, ok := f.events[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

type fakeVerifier struct{ uid string }

func (f fakeVerifier) Verify(string) (*auth.Claims, error) {
	if f.uid == "" {
		return nil, auth.NewError(http.StatusUnauthorized, "auth/invalid-token", "Invalid or expired token")
	}
	return &auth.Claims{UID: f.uid, Email: f.uid + "@example.org"}, nil
}

type fakeProfiles struct{ roles []string }

func (f fakeProfiles) ProfileByUID(_ context.Context, uid string) (*auth.Profile, error) {
	return &auth.Profile{UID: uid, Email: uid + "@example.org", Name: "Admin One", Roles: f.roles, Status: "active"}, nil
}

type fakeFlagStore struct{ cfg *flags.Config }

func (f fakeFlagStore) Load(context.Context) (*flags.Config, error) { return f.cfg, nil }
func (f fakeFlagStore) Save(context.Context, string, map[string]flags.Flag, string) error {
	return nil
}

type fixture struct {
	store  *fakeStore
	router http.Handler
}

func newFixture(t *testing.T, roles []string, cfg *flags.Config) *fixture {
	t.Helper()
	store := newFakeStore()
	h := NewHandler(store, validate.New(), zap.NewNop())
	policy := cors.New("dev", nil)
	guard := auth.NewGuard(fakeVerifier{uid: "admin-1"}, fakeProfiles{roles: roles}, zap.NewNop())
	gate := flags.NewService(fakeFlagStore{cfg: cfg}, zap.NewNop(), time.Minute)
	return &fixture{store: store, router: Routes(h, policy, guard, gate)}
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

const createBody = `{
	"title": {"en": "Sports Day", "ta": "விளையாட்டு நாள்"},
	"date": "2026-03-14",
	"startTime": "09:00",
	"eventType": "sports",
	"visibility": ["public", "parent"]
}`

func TestCreateEvent(t *testing.T) {
	fx := newFixture(t, []string{auth.RoleAdmin}, flags.DefaultConfig())

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(createBody))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	env := envelope(t, rec)
	assert.True(t, env.Success)

	require.Len(t, fx.store.created, 1)
	created := fx.store.created[0]
	assert.Equal(t, "Sports Day", created.Title.EN)
	assert.Equal(t, "admin-1", created.CreatedBy)
	assert.Equal(t, "Admin One", created.CreatedByName)
}

func TestCreateEventValidation(t *testing.T) {
	fx := newFixture(t, []string{auth.RoleAdmin}, flags.DefaultConfig())

	body := `{"title": {"en": "x"}, "date": "14-03-2026", "eventType": "party"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "validation/invalid-input", env.Code)
	assert.Contains(t, env.Message, "date")
	assert.Empty(t, fx.store.created, "invalid payload must not reach the store")
}

func TestGetEventNotFound(t *testing.T) {
	fx := newFixture(t, []string{auth.RoleAdmin}, flags.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/missing-id", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := envelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "calendar/not-found", env.Code)
}

func TestPreflightNeedsNoAuth(t *testing.T) {
	fx := newFixture(t, []string{auth.RoleAdmin}, flags.DefaultConfig())

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMissingToken(t *testing.T) {
	fx := newFixture(t, []string{auth.RoleAdmin}, flags.DefaultConfig())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "auth/missing-token", envelope(t, rec).Code)
}

func TestFeatureDisabled(t *testing.T) {
	cfg := flags.DefaultConfig()
	cfg.Roles[auth.RoleAdmin]["Calendar"] = flags.Flag{Enabled: false}
	fx := newFixture(t, []string{auth.RoleAdmin}, cfg)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "feature/disabled", envelope(t, rec).Code)
}

func TestReadonlyAdminCannotWrite(t *testing.T) {
	fx := newFixture(t, []string{auth.RoleAdminReadonly}, flags.DefaultConfig())

	// Reads pass.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Writes are blocked.
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(createBody))
	req.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "auth/forbidden", envelope(t, rec).Code)
}
