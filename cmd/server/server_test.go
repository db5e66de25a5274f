package main

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Simplici0/renoquote/internal/db"
	"github.com/Simplici0/renoquote/internal/logging"
	"github.com/Simplici0/renoquote/internal/migrations"
	"github.com/Simplici0/renoquote/internal/pricing"
	"github.com/Simplici0/renoquote/internal/quotes"
	"github.com/Simplici0/renoquote/internal/ratecard"
	"github.com/Simplici0/renoquote/internal/seed"
)

const testAdminToken = "s3cret-admin-token"

const concreteInputJSON = `{
	"property_type": "terraced",
	"location": "zone5",
	"era": "post_1950",
	"floor_level": "ground",
	"area_sqm": 90,
	"rooms": {"bedrooms": 3, "bathrooms": 1, "kitchens": 1},
	"work": {"renovate_bathrooms": true, "renovate_kitchen": true}
}`

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := db.Open(context.Background(), filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := migrations.Up(context.Background(), database); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if _, err := seed.Run(context.Background(), database, seed.Config{Card: ratecard.Default()}); err != nil {
		t.Fatalf("failed to seed rate cards: %v", err)
	}
	return database
}

// testClock hands out strictly increasing timestamps.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestServer(t *testing.T, adminToken string) *server {
	t.Helper()

	database := newTestDB(t)
	logger := logging.New(logging.Options{Writer: io.Discard, Format: "text"})
	srv := newServer(logger, ratecard.NewStore(database), quotes.NewSQLiteRepository(database), adminToken)
	clock := &testClock{now: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	srv.now = clock.Now

	if err := srv.reloadEngine(context.Background()); err != nil {
		t.Fatalf("reloadEngine returned error: %v", err)
	}
	return srv
}

func doRequest(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return v
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, "")
	rr := doRequest(t, srv.routes(nil), http.MethodGet, "/healthz", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := decodeBody[map[string]string](t, rr); got["status"] != "ok" {
		t.Fatalf("unexpected body %v", got)
	}
	if !quotes.ValidID(rr.Header().Get("X-Trace-ID")) {
		t.Fatalf("expected generated trace id, got %q", rr.Header().Get("X-Trace-ID"))
	}
}

func TestRequestLoggerKeepsValidTraceID(t *testing.T) {
	srv := newTestServer(t, "")
	const traceID = "5f0c6f3e-8c1e-4b7e-9a43-2d7f3d1c9b10"

	rr := doRequest(t, srv.routes(nil), http.MethodGet, "/healthz", "", "X-Trace-ID", traceID)
	if got := rr.Header().Get("X-Trace-ID"); got != traceID {
		t.Fatalf("expected trace id %q to be echoed, got %q", traceID, got)
	}

	rr = doRequest(t, srv.routes(nil), http.MethodGet, "/healthz", "", "X-Trace-ID", "not-a-uuid")
	if got := rr.Header().Get("X-Trace-ID"); got == "not-a-uuid" || !quotes.ValidID(got) {
		t.Fatalf("expected invalid trace id to be replaced, got %q", got)
	}
}

func TestHandleEstimateReturnsBreakdown(t *testing.T) {
	srv := newTestServer(t, "")
	rr := doRequest(t, srv.routes(nil), http.MethodPost, "/api/v1/estimates", concreteInputJSON)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	b := decodeBody[pricing.Breakdown](t, rr)
	if b.Total != 37752 || b.CostPerSqm != 419 || b.DurationWeeks != 7 {
		t.Fatalf("unexpected breakdown totals: total=%v perSqm=%v weeks=%d", b.Total, b.CostPerSqm, b.DurationWeeks)
	}
	if b.RateCardVersion != ratecard.DefaultVersion {
		t.Fatalf("expected rate card %s, got %s", ratecard.DefaultVersion, b.RateCardVersion)
	}
	if len(b.Items) != 8 {
		t.Fatalf("expected every work item in the breakdown, got %d", len(b.Items))
	}
	if it, ok := b.Item(pricing.ItemRewire); !ok || it.Amount != 0 {
		t.Fatalf("expected unselected rewire with zero amount, got %+v ok=%v", it, ok)
	}
}

func TestHandleEstimateRejectsBadBodies(t *testing.T) {
	srv := newTestServer(t, "")
	h := srv.routes(nil)

	cases := map[string]struct {
		body  string
		field string
	}{
		"empty":          {body: "", field: ""},
		"malformed":      {body: `{"area_sqm":`, field: ""},
		"unknown field":  {body: strings.Replace(concreteInputJSON, `"era"`, `"colour": "red", "era"`, 1), field: ""},
		"trailing data":  {body: concreteInputJSON + `{}`, field: ""},
		"bad location":   {body: strings.Replace(concreteInputJSON, `"zone5"`, `"zone9"`, 1), field: "location"},
		"zero area":      {body: strings.Replace(concreteInputJSON, `"area_sqm": 90`, `"area_sqm": 0`, 1), field: "area_sqm"},
		"negative rooms": {body: strings.Replace(concreteInputJSON, `"bedrooms": 3`, `"bedrooms": -1`, 1), field: "rooms.bedrooms"},
		"flat no floor": {
			body:  strings.Replace(strings.Replace(concreteInputJSON, `"terraced"`, `"flat"`, 1), `"floor_level": "ground",`, ``, 1),
			field: "floor_level",
		},
	}
	for name, tc := range cases {
		rr := doRequest(t, h, http.MethodPost, "/api/v1/estimates", tc.body)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d: %s", name, rr.Code, rr.Body.String())
		}
		if got := decodeBody[errorResponse](t, rr); got.Field != tc.field || got.Error == "" {
			t.Fatalf("%s: unexpected error body %+v", name, got)
		}
	}
}

func TestHandleEstimateRange(t *testing.T) {
	srv := newTestServer(t, "")
	rr := doRequest(t, srv.routes(nil), http.MethodPost, "/api/v1/estimates/range",
		`{"area_sqm": 90, "bedrooms": 3, "bathrooms": 1, "kitchens": 1}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decodeBody[pricing.Range](t, rr)
	if got.Min != 37752 || got.Max != 255431 || got.Average != 146592 {
		t.Fatalf("unexpected range %+v", got)
	}

	rr = doRequest(t, srv.routes(nil), http.MethodPost, "/api/v1/estimates/range",
		`{"area_sqm": 90, "bedrooms": 3, "bathrooms": 1, "kitchens": 99}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if got := decodeBody[errorResponse](t, rr); got.Field != "kitchens" {
		t.Fatalf("expected kitchens field error, got %+v", got)
	}
}

func TestHandleEstimateWithoutEngine(t *testing.T) {
	logger := logging.New(logging.Options{Writer: io.Discard, Format: "text"})
	srv := newServer(logger, ratecard.NewStore(newTestDB(t)), nil, "")

	rr := doRequest(t, srv.routes(nil), http.MethodPost, "/api/v1/estimates", concreteInputJSON)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t, "")
	h := srv.routes([]string{"https://app.example"})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/estimates", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}
