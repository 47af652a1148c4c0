package classes

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

	storeclasses "github.com/gsdta/schoolapi/internal/app/store/classes"
	"github.com/gsdta/schoolapi/internal/app/store/errs"
	storestudents "github.com/gsdta/schoolapi/internal/app/store/students"
	"github.com/gsdta/schoolapi/internal/app/system/auth"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/flags"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

type fakeClassStore struct {
	classes map[string]*storeclasses.Class
}

func (f *fakeClassStore) Create(_ context.Context, p storeclasses.CreateParams) (*storeclasses.Class, error) {
	c := &storeclasses.Class{ID: "class-new", Name: p.Name, GradeID: p.GradeID, Capacity: p.Capacity, Status: "active"}
	f.classes[c.ID] = c
	return c, nil
}

func (f *fakeClassStore) ByID(_ context.Context, id string) (*storeclasses.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return c, nil
}

func (f *fakeClassStore) List(_ context.Context, _ string, _, _ int) ([]storeclasses.Class, int64, error) {
	out := make([]storeclasses.Class, 0, len(f.classes))
	for _, c := range f.classes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (f *fakeClassStore) ListByTeacher(_ context.Context, uid string) ([]storeclasses.Class, error) {
	out := []storeclasses.Class{}
	for _, c := range f.classes {
		for _, t := range c.Teachers {
			if t.UID == uid {
				out = append(out, *c)
			}
		}
	}
	return out, nil
}

func (f *fakeClassStore) Update(_ context.Context, id string, _ storeclasses.UpdateParams) (*storeclasses.Class, error) {
	return f.ByID(context.Background(), id)
}

func (f *fakeClassStore) ReserveSeats(_ context.Context, id string, n int) (*storeclasses.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	if c.Enrolled+n > c.Capacity {
		return nil, errs.Wrap(errs.ErrCapacityExceeded,
			"cannot assign %d student(s), only %d spot(s) available", n, c.Available())
	}
	c.Enrolled += n
	return c, nil
}

func (f *fakeClassStore) ReleaseSeat(_ context.Context, id string) error {
	if c, ok := f.classes[id]; ok && c.Enrolled > 0 {
		c.Enrolled--
	}
	return nil
}

func (f *fakeClassStore) AssignTeacher(_ context.Context, id string, t storeclasses.Teacher) (*storeclasses.Class, error) {
	c, ok := f.classes[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	for _, existing := range c.Teachers {
		if existing.UID == t.UID {
			return nil, errs.Wrap(errs.ErrAlreadyExists, "teacher is already assigned to this class")
		}
	}
	c.Teachers = append(c.Teachers, t)
	return c, nil
}

func (f *fakeClassStore) IsTeacherAssigned(_ context.Context, id, uid string) (bool, error) {
	c, ok := f.classes[id]
	if !ok {
		return false, nil
	}
	for _, t := range c.Teachers {
		if t.UID == uid {
			return true, nil
		}
	}
	return false, nil
}

type fakeStudentStore struct {
	// failing student ids reject assignment with an invalid-status error
	failing map[string]bool
}

func (f *fakeStudentStore) AssignClass(_ context.Context, id, classID, className string) (*storestudents.Student, error) {
	if f.failing[id] {
		return nil, errs.Wrap(errs.ErrInvalidStatus, "student with status %q cannot be assigned to a class", "pending")
	}
	return &storestudents.Student{ID: id, ClassID: classID, ClassName: className, Status: storestudents.StatusActive}, nil
}

func (f *fakeStudentStore) ByClass(context.Context, string) ([]storestudents.Student, error) {
	return []storestudents.Student{}, nil
}

type fakeUserStore struct{}

func (fakeUserStore) DisplayNameByUID(_ context.Context, uid string) (string, error) {
	return "Teacher " + uid, nil
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(string) (*auth.Claims, error) {
	return &auth.Claims{UID: "admin-1", Email: "admin@example.org"}, nil
}

type fakeProfiles struct{ roles []string }

func (f fakeProfiles) ProfileByUID(_ context.Context, uid string) (*auth.Profile, error) {
	return &auth.Profile{UID: uid, Roles: f.roles, Status: "active"}, nil
}

type fakeFlagStore struct{}

func (fakeFlagStore) Load(context.Context) (*flags.Config, error) { return flags.DefaultConfig(), nil }
func (fakeFlagStore) Save(context.Context, string, map[string]flags.Flag, string) error {
	return nil
}

func newRouter(cs *fakeClassStore, ss *fakeStudentStore) http.Handler {
	h := NewHandler(cs, ss, fakeUserStore{}, validate.New(), zap.NewNop())
	policy := cors.New("dev", nil)
	guard := auth.NewGuard(fakeVerifier{}, fakeProfiles{roles: []string{auth.RoleAdmin}}, zap.NewNop())
	gate := flags.NewService(fakeFlagStore{}, zap.NewNop(), time.Minute)
	return Routes(h, policy, guard, gate)
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

func TestAssignStudentsCapacityExceeded(t *testing.T) {
	cs := &fakeClassStore{classes: map[string]*storeclasses.Class{
		"class-1": {ID: "class-1", Name: "Grade 3A", Capacity: 10, Enrolled: 9},
	}}
	router := newRouter(cs, &fakeStudentStore{})

	rec := doJSON(router, http.MethodPost, "/class-1/students",
		`{"studentIds": ["s1", "s2", "s3"]}`)

	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	env := envelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, "class/capacity-exceeded", env.Code)
	assert.Contains(t, env.Message, "only 1 spot(s) available")
	assert.Equal(t, 9, cs.classes["class-1"].Enrolled, "failed batch must not consume seats")
}

func TestAssignStudentsAll(t *testing.T) {
	cs := &fakeClassStore{classes: map[string]*storeclasses.Class{
		"class-1": {ID: "class-1", Name: "Grade 3A", Capacity: 10, Enrolled: 0},
	}}
	router := newRouter(cs, &fakeStudentStore{})

	rec := doJSON(router, http.MethodPost, "/class-1/students",
		`{"studentIds": ["s1", "s2"]}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, envelope(t, rec).Success)
	assert.Equal(t, 2, cs.classes["class-1"].Enrolled)
}

func TestAssignStudentsPartial(t *testing.T) {
	cs := &fakeClassStore{classes: map[string]*storeclasses.Class{
		"class-1": {ID: "class-1", Name: "Grade 3A", Capacity: 10, Enrolled: 0},
	}}
	router := newRouter(cs, &fakeStudentStore{failing: map[string]bool{"s2": true}})

	rec := doJSON(router, http.MethodPost, "/class-1/students",
		`{"studentIds": ["s1", "s2", "s3"]}`)

	require.Equal(t, http.StatusMultiStatus, rec.Code, rec.Body.String())
	env := envelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, 2, cs.classes["class-1"].Enrolled, "failed assignment must release its seat")
}

func TestAssignStudentsClassMissing(t *testing.T) {
	router := newRouter(&fakeClassStore{classes: map[string]*storeclasses.Class{}}, &fakeStudentStore{})

	rec := doJSON(router, http.MethodPost, "/missing/students", `{"studentIds": ["s1"]}`)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "class/not-found", envelope(t, rec).Code)
}

func TestCreateClassCapacityBounds(t *testing.T) {
	cs := &fakeClassStore{classes: map[string]*storeclasses.Class{}}
	router := newRouter(cs, &fakeStudentStore{})

	rec := doJSON(router, http.MethodPost, "/",
		`{"name": "Grade 1A", "gradeId": "g1", "capacity": 101}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation/invalid-input", envelope(t, rec).Code)

	rec = doJSON(router, http.MethodPost, "/",
		`{"name": "Grade 1A", "gradeId": "g1", "capacity": 30}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestAssignTeacherDuplicate(t *testing.T) {
	cs := &fakeClassStore{classes: map[string]*storeclasses.Class{
		"class-1": {ID: "class-1", Name: "Grade 3A", Capacity: 10,
			Teachers: []storeclasses.Teacher{{UID: "t1", Name: "Teacher t1", Role: "primary"}}},
	}}
	router := newRouter(cs, &fakeStudentStore{})

	rec := doJSON(router, http.MethodPost, "/class-1/teachers", `{"teacherUid": "t1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := envelope(t, rec)
	assert.Equal(t, "class/already-exists", env.Code)
	assert.Contains(t, env.Message, "already assigned")
}
