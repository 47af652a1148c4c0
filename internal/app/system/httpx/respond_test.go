package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, http.StatusCreated, map[string]string{"id": "abc"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Empty(t, env.Code)
	assert.Empty(t, env.Message)
}

func TestErrEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Err(rec, req, http.StatusBadRequest, "validation/invalid-input", "date: is required")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "validation/invalid-input", env.Code)
	assert.Equal(t, "date: is required", env.Message)
	assert.Nil(t, env.Data)
}

func TestDomainErrMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", errs.ErrNotFound, 404, "calendar/not-found"},
		{"wrapped not found", errs.Wrap(errs.ErrNotFound, "event %s", "e1"), 404, "calendar/not-found"},
		{"capacity", errs.Wrap(errs.ErrCapacityExceeded, "only 2 spot(s) available"), 400, "calendar/capacity-exceeded"},
		{"invalid status", errs.Wrap(errs.ErrInvalidStatus, "cannot admit from %q", "active"), 400, "calendar/invalid-status"},
		{"already exists", errs.Wrap(errs.ErrAlreadyExists, "slug taken"), 400, "calendar/already-exists"},
		{"conflict", errs.ErrConflict, 409, "calendar/conflict"},
		{"forbidden", errs.ErrForbidden, 403, "calendar/forbidden"},
		{"unknown", assertError{}, 500, "internal/error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			DomainErr(rec, req, "calendar", tc.err)

			require.Equal(t, tc.status, rec.Code)
			env := decodeEnvelope(t, rec)
			assert.False(t, env.Success)
			assert.Equal(t, tc.code, env.Code)
		})
	}
}

type assertError struct{}

func (assertError) Error() string { return "internal detail that must not leak" }

func TestDomainErrHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	DomainErr(rec, req, "student", assertError{})

	env := decodeEnvelope(t, rec)
	assert.NotContains(t, env.Message, "internal detail")
}

func TestDecodeJSONInvalid(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))

	var dst struct{}
	ok := DecodeJSON(rec, req, &dst)
	require.False(t, ok)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "validation/invalid-json", env.Code)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=25&bad=abc&neg=-3", nil)
	assert.Equal(t, 25, QueryInt(req, "limit", 100))
	assert.Equal(t, 100, QueryInt(req, "missing", 100))
	assert.Equal(t, 100, QueryInt(req, "bad", 100))
	assert.Equal(t, 100, QueryInt(req, "neg", 100))
}
