package authapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	"github.com/gsdta/schoolapi/internal/app/store/users"
	"github.com/gsdta/schoolapi/internal/app/system/audit"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

type fakeUserStore struct {
	byEmail map[string]*users.User
	created []*users.User
}

func (f *fakeUserStore) ByEmail(_ context.Context, email string) (*users.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) ByUID(_ context.Context, uid string) (*users.User, error) {
	for _, u := range f.byEmail {
		if u.UID == uid {
			return u, nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeUserStore) Create(_ context.Context, u *users.User) error {
	if _, ok := f.byEmail[u.Email]; ok {
		return errs.Wrap(errs.ErrAlreadyExists, "email %s", u.Email)
	}
	u.Status = "active"
	f.byEmail[u.Email] = u
	f.created = append(f.created, u)
	return nil
}

type fakeIssuer struct{ err error }

func (f fakeIssuer) Issue(uid, _ string, _ bool) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-for-" + uid, nil
}

type fakeAuditStore struct {
	events []audit.SecurityEvent
}

func (f *fakeAuditStore) InsertEntry(context.Context, audit.Entry) error { return nil }
func (f *fakeAuditStore) InsertSecurityEvent(_ context.Context, e audit.SecurityEvent) error {
	f.events = append(f.events, e)
	return nil
}
func (f *fakeAuditStore) ListEntries(context.Context, audit.ListFilter) ([]audit.Entry, int64, error) {
	return nil, 0, nil
}
func (f *fakeAuditStore) ListSecurityEvents(context.Context, int, int) ([]audit.SecurityEvent, int64, error) {
	return nil, 0, nil
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newRouter(t *testing.T, store *fakeUserStore, events *fakeAuditStore) http.Handler {
	t.Helper()
	h := NewHandler(store, fakeIssuer{}, audit.NewLogger(events, zap.NewNop()), validate.New(), zap.NewNop())
	return Routes(h, cors.New("dev", nil))
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func activeUser(t *testing.T) *users.User {
	return &users.User{
		UID:          "u1",
		Email:        "parent@example.org",
		PasswordHash: mustHash(t, "correct horse"),
		Roles:        []string{auth.RoleParent},
		Status:       "active",
	}
}

func TestLogin(t *testing.T) {
	store := &fakeUserStore{byEmail: map[string]*users.User{"parent@example.org": activeUser(t)}}
	router := newRouter(t, store, &fakeAuditStore{})

	rec := postJSON(router, "/login", `{"email": "parent@example.org", "password": "correct horse"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	raw, err := json.Marshal(envelope(t, rec).Data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &data))
	assert.Equal(t, "token-for-u1", data.Token)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	store := &fakeUserStore{byEmail: map[string]*users.User{"parent@example.org": activeUser(t)}}
	events := &fakeAuditStore{}
	router := newRouter(t, store, events)

	unknown := postJSON(router, "/login", `{"email": "nobody@example.org", "password": "whatever"}`)
	wrongPw := postJSON(router, "/login", `{"email": "parent@example.org", "password": "wrong"}`)

	require.Equal(t, http.StatusUnauthorized, unknown.Code)
	require.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String(),
		"unknown email and wrong password must be indistinguishable")
	assert.Equal(t, "auth/invalid-credentials", envelope(t, unknown).Code)

	require.Len(t, events.events, 2)
	assert.Equal(t, "login_failed", events.events[0].Type)
	assert.Equal(t, "login_failed", events.events[1].Type)
}

func TestLoginSuspended(t *testing.T) {
	u := activeUser(t)
	u.Status = "suspended"
	store := &fakeUserStore{byEmail: map[string]*users.User{u.Email: u}}
	events := &fakeAuditStore{}
	router := newRouter(t, store, events)

	rec := postJSON(router, "/login", `{"email": "parent@example.org", "password": "correct horse"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "auth/forbidden", envelope(t, rec).Code)
	require.Len(t, events.events, 1)
	assert.Equal(t, "login_blocked", events.events[0].Type)
}

func TestRegister(t *testing.T) {
	store := &fakeUserStore{byEmail: map[string]*users.User{}}
	router := newRouter(t, store, &fakeAuditStore{})

	rec := postJSON(router, "/register",
		`{"email": "new@example.org", "password": "longenough", "firstName": "New", "lastName": "Parent"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, store.created, 1)
	u := store.created[0]
	assert.Equal(t, []string{auth.RoleParent}, u.Roles, "self registration only grants the parent role")
	assert.NotEqual(t, "longenough", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("longenough")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := &fakeUserStore{byEmail: map[string]*users.User{"parent@example.org": activeUser(t)}}
	router := newRouter(t, store, &fakeAuditStore{})

	rec := postJSON(router, "/register",
		`{"email": "parent@example.org", "password": "longenough", "firstName": "New", "lastName": "Parent"}`)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "auth/email-in-use", envelope(t, rec).Code)
}

func TestRegisterShortPassword(t *testing.T) {
	store := &fakeUserStore{byEmail: map[string]*users.User{}}
	router := newRouter(t, store, &fakeAuditStore{})

	rec := postJSON(router, "/register",
		`{"email": "new@example.org", "password": "short", "firstName": "New", "lastName": "Parent"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "validation/invalid-input", env.Code)
	assert.Contains(t, env.Message, "password")
	assert.Empty(t, store.created)
}
