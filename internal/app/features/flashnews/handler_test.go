package flashnews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gsdta/schoolapi/internal/app/store/errs"
	storeflash "github.com/gsdta/schoolapi/internal/app/store/flashnews"
	"github.com/gsdta/schoolapi/internal/app/system/cors"
	"github.com/gsdta/schoolapi/internal/app/system/httpx"
	"github.com/gsdta/schoolapi/internal/app/system/validate"
)

type fakeStore struct {
	items       []storeflash.Item
	lastForDate string
}

func (f *fakeStore) Create(_ context.Context, it *storeflash.Item) error {
	it.ID = "fn-new"
	f.items = append(f.items, *it)
	return nil
}

func (f *fakeStore) ByID(_ context.Context, id string) (*storeflash.Item, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, errs.ErrNotFound
}

func (f *fakeStore) List(_ context.Context) ([]storeflash.Item, error) {
	return f.items, nil
}

func (f *fakeStore) ListActive(_ context.Context, date string) ([]storeflash.Item, error) {
	f.lastForDate = date
	out := []storeflash.Item{}
	for _, it := range f.items {
		if !it.Active {
			continue
		}
		if it.StartDate != "" && date < it.StartDate {
			continue
		}
		if it.EndDate != "" && date > it.EndDate {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (f *fakeStore) Update(context.Context, string, storeflash.UpdateParams) (*storeflash.Item, error) {
	return nil, errs.ErrNotFound
}

func (f *fakeStore) Delete(context.Context, string) error { return nil }

func newPublicRouter(store *fakeStore, now time.Time) http.Handler {
	h := NewHandler(store, validate.New(), zap.NewNop())
	h.now = func() time.Time { return now }
	return PublicRoutes(h, cors.New("dev", nil))
}

func publicFeed(t *testing.T, router http.Handler, path string, acceptLanguage string) publicListResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	raw, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var out publicListResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func marqueeItems() []storeflash.Item {
	return []storeflash.Item{
		{ID: "fn-1", Text: validate.BilingualText{EN: "School reopens Monday", TA: "திங்கள் பள்ளி திறக்கிறது"}, Active: true},
		{ID: "fn-2", Text: validate.BilingualText{EN: "Exam week"}, Active: true,
			StartDate: "2026-03-01", EndDate: "2026-03-07"},
		{ID: "fn-3", Text: validate.BilingualText{EN: "Old notice"}, Active: false},
	}
}

func TestPublicFeedWindow(t *testing.T) {
	store := &fakeStore{items: marqueeItems()}

	// Inside fn-2's window both active items show.
	feed := publicFeed(t, newPublicRouter(store, time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC)), "/", "")
	require.Len(t, feed.Items, 2)
	assert.Equal(t, "2026-03-03", store.lastForDate)

	// After the window only the undated item remains; inactive never shows.
	feed = publicFeed(t, newPublicRouter(store, time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)), "/", "")
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "fn-1", feed.Items[0].ID)
}

func TestPublicFeedLanguage(t *testing.T) {
	store := &fakeStore{items: marqueeItems()[:1]}
	router := newPublicRouter(store, time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))

	cases := []struct {
		name   string
		path   string
		header string
		lang   string
		text   string
	}{
		{"default english", "/", "", "en", "School reopens Monday"},
		{"tamil header", "/", "ta-IN,ta;q=0.9,en;q=0.5", "ta", "திங்கள் பள்ளி திறக்கிறது"},
		{"query overrides header", "/?lang=ta", "en-US", "ta", "திங்கள் பள்ளி திறக்கிறது"},
		{"unsupported falls back", "/", "fr-FR", "en", "School reopens Monday"},
		{"garbage header falls back", "/", ";;;", "en", "School reopens Monday"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feed := publicFeed(t, router, tc.path, tc.header)
			assert.Equal(t, tc.lang, feed.Lang)
			require.Len(t, feed.Items, 1)
			assert.Equal(t, tc.text, feed.Items[0].Text)
		})
	}
}

func TestPublicFeedFallsBackToEnglishText(t *testing.T) {
	store := &fakeStore{items: []storeflash.Item{
		{ID: "fn-en", Text: validate.BilingualText{EN: "English only"}, Active: true},
	}}
	router := newPublicRouter(store, time.Date(2026, 3, 3, 12, 0, 0, 0, time.UTC))

	feed := publicFeed(t, router, "/?lang=ta", "")
	assert.Equal(t, "ta", feed.Lang)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "English only", feed.Items[0].Text, "missing translation falls back to English")
}
