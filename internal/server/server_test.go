package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-trip-planner/internal/handlers"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/planner"
	"road-trip-planner/internal/sqlite"
	"road-trip-planner/internal/testutil"
)

func newTestHandler(t *testing.T) *handlers.Handler {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	geocoder := testutil.NewMockGeocoder()
	geocoder.SetLocation("Atlanta, GA", models.Coordinates{Lat: 33.7490, Lng: -84.3880})
	geocoder.SetLocation("Chicago, IL", models.Coordinates{Lat: 41.8781, Lng: -87.6298})

	return &handlers.Handler{
		DB:       db,
		Geocoder: geocoder,
		Planner:  planner.New(geocoder, testutil.NewMockRouter(), nil, nil, planner.Settings{}),
	}
}

func TestRoutes(t *testing.T) {
	ts := httptest.NewServer(Routes(newTestHandler(t)))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(ts.URL+"/api/v1/trips", "application/json",
		strings.NewReader(`{"origin": "Atlanta, GA", "destination": "Chicago, IL"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var plan models.TripPlan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&plan))
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/api/v1/trips/" + plan.ID)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/api/v1/trips/" + plan.ID + "/summary")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "## Trip Overview")

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/v1/trips/"+plan.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodPut, ts.URL+"/api/v1/trips/"+plan.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := httptest.NewServer(Routes(newTestHandler(t)))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `roadtrip_http_requests_total{method="GET",path="GET /healthz",status="200"}`)
}

func TestCORSPreflight(t *testing.T) {
	ts := httptest.NewServer(Routes(newTestHandler(t)))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/trips", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	req, _ = http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/trips", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestServerStartShutdown(t *testing.T) {
	srv := New(Config{Addr: "127.0.0.1:0"}, newTestHandler(t))

	addr, err := srv.Start()
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
}
