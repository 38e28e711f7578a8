package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/mapmarks/internal/bookmarks"
	"github.com/MrSnakeDoc/mapmarks/internal/codec"
	"github.com/MrSnakeDoc/mapmarks/internal/domain"
	"github.com/MrSnakeDoc/mapmarks/internal/engine"
	"github.com/MrSnakeDoc/mapmarks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/mapmarks/internal/i18n"
	"github.com/MrSnakeDoc/mapmarks/internal/icons"
	"github.com/MrSnakeDoc/mapmarks/internal/logger"
)

type fakePinger struct {
	name string
	err  error
}

func (p fakePinger) Name() string                 { return p.name }
func (p fakePinger) Ping(_ context.Context) error { return p.err }

var louvre = engine.POI{
	Name:    "louvre museum",
	Place:   "paris",
	Types:   []string{"tourism-museum"},
	Point:   domain.Point{Lat: 48.8606, Lon: 2.3376},
	Visible: true,
}

func newTestDeps(t *testing.T) (deps.Deps, *engine.Memory) {
	t.Helper()
	log := logger.New("error", false)
	eng := engine.NewMemory(engine.Options{POIs: []engine.POI{louvre}})
	return deps.Deps{
		Logger:          log,
		StartTime:       time.Now(),
		Version:         "test",
		RateLimitBurst:  100,
		RateLimitRefill: time.Millisecond,
		Manager:         bookmarks.NewManager(eng, icons.MustLoad(), i18n.New("en"), log),
		Engine:          eng,
		Mu:              &sync.Mutex{},
		Validate:        validator.New(validator.WithRequiredStructEnabled()),
		FlushTrigger:    make(chan struct{}, 1),
	}, eng
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %s", w.Body.String())
	return e["code"].(string)
}

func TestHealthz(t *testing.T) {
	d, _ := newTestDeps(t)
	w := do(t, NewRouter(d.Logger, d), http.MethodGet, "/healthz", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name    string
		storage []deps.Pinger
		want    int
	}{
		{name: "no storage", want: http.StatusOK},
		{name: "one up", storage: []deps.Pinger{fakePinger{name: "a", err: errors.New("down")}, fakePinger{name: "b"}}, want: http.StatusOK},
		{name: "all down", storage: []deps.Pinger{fakePinger{name: "a", err: errors.New("down")}}, want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newTestDeps(t)
			d.Storage = tt.storage
			w := do(t, NewRouter(d.Logger, d), http.MethodGet, "/readyz", "")
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestInfraMode(t *testing.T) {
	d, eng := newTestDeps(t)
	eng.CreateCategory("c")
	d.Storage = []deps.Pinger{fakePinger{name: "sqlite"}, fakePinger{name: "redis", err: errors.New("refused")}}

	w := do(t, NewRouter(d.Logger, d), http.MethodGet, "/infra", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "degraded", body["mode"])
	components := body["components"].(map[string]any)
	assert.Equal(t, true, components["storage:sqlite"].(map[string]any)["ok"])
	assert.Equal(t, false, components["storage:redis"].(map[string]any)["ok"])
	assert.EqualValues(t, 1, components["engine"].(map[string]any)["categories"])
	assert.EqualValues(t, 1, components["pois"].(map[string]any)["loaded"])
}

func TestCategoryLifecycle(t *testing.T) {
	d, _ := newTestDeps(t)
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodPost, "/api/categories", `{"name":"Trip"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Trip", decodeBody(t, w)["category"].(map[string]any)["name"])

	w = do(t, h, http.MethodPost, "/api/categories", `{"name":"Trip"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "Trip 1", decodeBody(t, w)["category"].(map[string]any)["name"])

	w = do(t, h, http.MethodGet, "/api/categories", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeBody(t, w)["count"])

	w = do(t, h, http.MethodGet, "/api/categories/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Trip 1", decodeBody(t, w)["name"])

	w = do(t, h, http.MethodGet, "/api/categories/7", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "CATEGORY_NOT_FOUND", errorCode(t, w))

	w = do(t, h, http.MethodDelete, "/api/categories/0", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, h, http.MethodDelete, "/api/categories/1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateCategoryMovesBookmarkAtPoint(t *testing.T) {
	d, eng := newTestDeps(t)
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodPost, "/api/categories", `{"name":"Pins","lat":10.5,"lon":20.25}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	bm := decodeBody(t, w)["bookmark"].(map[string]any)
	assert.Equal(t, "bookmark", bm["kind"])
	assert.Equal(t, "Dropped Pin", bm["title"])
	assert.EqualValues(t, 0, bm["category"])
	assert.EqualValues(t, 0, bm["index"])
	assert.Equal(t, 1, eng.CategorySize(0))
}

func TestCreateCategoryValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{name: "missing name", body: `{}`, code: "INVALID_REQUEST"},
		{name: "lat without lon", body: `{"name":"x","lat":10}`, code: "INVALID_REQUEST"},
		{name: "latitude out of range", body: `{"name":"x","lat":100,"lon":0}`, code: "INVALID_REQUEST"},
		{name: "unknown field", body: `{"name":"x","color":"red"}`, code: "INVALID_REQUEST"},
		{name: "not json", body: `name=x`, code: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, eng := newTestDeps(t)
			w := do(t, NewRouter(d.Logger, d), http.MethodPost, "/api/categories", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
			assert.Zero(t, eng.CategoriesCount())
		})
	}
}

func TestBookmarkLifecycle(t *testing.T) {
	d, eng := newTestDeps(t)
	eng.CreateCategory("Paris")
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodPost, "/api/categories/0/bookmarks", `{"name":"Cafe","lat":48.85,"lon":2.35,"icon":"placemark-blue"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody(t, w)
	assert.Equal(t, "Cafe", created["title"])
	assert.Equal(t, "placemark-blue", created["icon"])

	w = do(t, h, http.MethodGet, "/api/categories/0/bookmarks/0", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Cafe", decodeBody(t, w)["title"])

	w = do(t, h, http.MethodGet, "/api/categories/0/bookmarks/3", "")
	assert.Equal(t, "BOOKMARK_NOT_FOUND", errorCode(t, w))

	w = do(t, h, http.MethodPost, "/api/categories/0/bookmarks/0/show", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	shown, ok := eng.LastShown()
	assert.True(t, ok)
	assert.Equal(t, engine.Handle{Category: 0, Bookmark: 0}, shown)

	w = do(t, h, http.MethodDelete, "/api/categories/0/bookmarks/0", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, eng.CategorySize(0))

	w = do(t, h, http.MethodDelete, "/api/categories/0/bookmarks/0", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddBookmarkErrors(t *testing.T) {
	d, eng := newTestDeps(t)
	eng.CreateCategory("only")
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodPost, "/api/categories/4/bookmarks", `{"lat":1,"lon":1}`)
	assert.Equal(t, "CATEGORY_NOT_FOUND", errorCode(t, w))

	w = do(t, h, http.MethodPost, "/api/categories/x/bookmarks", `{"lat":1,"lon":1}`)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))

	w = do(t, h, http.MethodPost, "/api/categories/0/bookmarks", `{"name":"no point"}`)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, w))
}

func TestAddBookmarkDefaultsName(t *testing.T) {
	d, eng := newTestDeps(t)
	eng.CreateCategory("c")

	w := do(t, NewRouter(d.Logger, d), http.MethodPost, "/api/categories/0/bookmarks", `{"lat":-33.9,"lon":18.4}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "Dropped Pin", decodeBody(t, w)["title"])
}

func TestAddBookmarkOnPOIIsNamedByEngine(t *testing.T) {
	d, eng := newTestDeps(t)
	eng.CreateCategory("c")

	w := do(t, NewRouter(d.Logger, d), http.MethodPost, "/api/categories/0/bookmarks", `{"lat":48.8606,"lon":2.3376}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decodeBody(t, w)
	assert.Equal(t, "louvre museum (tourism-museum)", body["title"])
	assert.Equal(t, []any{"tourism-museum"}, body["raw_types"])
}

func TestRecordRoundTrip(t *testing.T) {
	d, eng := newTestDeps(t)
	eng.CreateCategory("c")
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodPost, "/api/categories/0/bookmarks", `{"name":"Dock","lat":51.5,"lon":-0.12}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, h, http.MethodGet, "/api/categories/0/bookmarks/0/record", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, codec.ContentType, w.Header().Get("Content-Type"))

	obj, err := codec.Decode(w.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Dock", obj.Base().Title())

	r := httptest.NewRequest(http.MethodPost, "/api/records/decode", bytes.NewReader(w.Body.Bytes()))
	r.Header.Set("Content-Type", codec.ContentType)
	dw := httptest.NewRecorder()
	h.ServeHTTP(dw, r)

	require.Equal(t, http.StatusOK, dw.Code, dw.Body.String())
	body := decodeBody(t, dw)
	assert.Equal(t, "bookmark", body["kind"])
	assert.Equal(t, "Dock", body["title"])
	assert.InDelta(t, 51.5, body["lat"], 1e-12)
}

func TestDecodeRecordRejectsGarbage(t *testing.T) {
	d, _ := newTestDeps(t)
	w := do(t, NewRouter(d.Logger, d), http.MethodPost, "/api/records/decode", "\xc1garbage")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_RECORD", errorCode(t, w))
}

func TestBookmarkAtAndPreview(t *testing.T) {
	d, eng := newTestDeps(t)
	eng.CreateCategory("c")
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodGet, "/api/bookmarks/at?lat=1&lon=2", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 0, body["category"])
	assert.EqualValues(t, 0, body["index"])
	assert.Zero(t, eng.CategorySize(0))

	w = do(t, h, http.MethodGet, "/api/bookmarks/preview?lat=48.8606&lon=2.3376", "")
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, true, body["preview"])
	assert.Equal(t, "Louvre Museum (Tourism-Museum)", body["title"])
	assert.Nil(t, body["category"])

	w = do(t, h, http.MethodGet, "/api/bookmarks/preview?lat=1&lon=2&name=Mine", "")
	assert.Equal(t, "Mine", decodeBody(t, w)["title"])
}

func TestQueryPointValidation(t *testing.T) {
	d, _ := newTestDeps(t)
	h := NewRouter(d.Logger, d)

	for _, target := range []string{
		"/api/bookmarks/at",
		"/api/bookmarks/at?lat=1",
		"/api/bookmarks/at?lat=91&lon=0",
		"/api/poi?lat=0&lon=181",
		"/api/poi?lat=abc&lon=1",
	} {
		w := do(t, h, http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, "INVALID_COORDINATES", errorCode(t, w), target)
	}
}

func TestPOI(t *testing.T) {
	d, _ := newTestDeps(t)
	w := do(t, NewRouter(d.Logger, d), http.MethodGet, "/api/poi?lat=48.8606&lon=2.3376", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Louvre Museum (Tourism-Museum)", body["name"])
	assert.Equal(t, true, body["visible"])
}

func TestIcons(t *testing.T) {
	d, _ := newTestDeps(t)
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodGet, "/api/icons", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Positive(t, decodeBody(t, w)["count"])

	w = do(t, h, http.MethodGet, "/api/icons/placemark-blue", "")
	body := decodeBody(t, w)
	assert.Equal(t, "placemark-blue", body["name"])
	assert.Equal(t, false, body["fallback"])

	w = do(t, h, http.MethodGet, "/api/icons/nope", "")
	body = decodeBody(t, w)
	assert.Equal(t, "placemark-red", body["name"])
	assert.Equal(t, true, body["fallback"])

	w = do(t, h, http.MethodGet, "/api/icons/nope?strict", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ICON_NOT_FOUND", errorCode(t, w))
}

func TestReloadTriggers(t *testing.T) {
	d, _ := newTestDeps(t)
	h := NewRouter(d.Logger, d)

	w := do(t, h, http.MethodPost, "/reload", "")
	require.Equal(t, http.StatusAccepted, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["flush"])
	assert.Equal(t, false, body["import"])

	w = do(t, h, http.MethodPost, "/reload", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RELOAD_IN_PROGRESS", errorCode(t, w))
}

func TestEnforceHostOnAPI(t *testing.T) {
	d, _ := newTestDeps(t)
	d.AllowedHosts = []string{"maps.example.com"}
	h := NewRouter(d.Logger, d)

	r := httptest.NewRequest(http.MethodGet, "/api/icons", nil)
	r.Host = "evil.example.com"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/api/icons", nil)
	r.Host = "maps.example.com:8080"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMutationsAreRateLimited(t *testing.T) {
	d, _ := newTestDeps(t)
	d.RateLimitBurst = 2
	d.RateLimitRefill = time.Hour
	h := NewRouter(d.Logger, d)

	for i := 0; i < 2; i++ {
		w := do(t, h, http.MethodPost, "/api/categories", `{"name":"x"}`)
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w := do(t, h, http.MethodPost, "/api/categories", `{"name":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, w))

	// reads share no bucket with writes
	w = do(t, h, http.MethodGet, "/api/categories", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	d, _ := newTestDeps(t)
	w := do(t, NewRouter(d.Logger, d), http.MethodGet, "/api/nothing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}
