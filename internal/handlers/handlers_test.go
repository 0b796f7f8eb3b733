package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-trip-planner/internal/models"
	"road-trip-planner/internal/planner"
	"road-trip-planner/internal/sqlite"
	"road-trip-planner/internal/testutil"
)

var (
	atlanta = models.Coordinates{Lat: 33.7490, Lng: -84.3880}
	chicago = models.Coordinates{Lat: 41.8781, Lng: -87.6298}
)

func setupTestHandler(t *testing.T) (*Handler, *testutil.MockRouter) {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	geocoder := testutil.NewMockGeocoder()
	geocoder.SetLocation("Atlanta, GA", atlanta)
	geocoder.SetLocation("Chicago, IL", chicago)
	router := testutil.NewMockRouter()

	return &Handler{
		DB:       db,
		Geocoder: geocoder,
		Planner:  planner.New(geocoder, router, nil, nil, planner.Settings{}),
	}, router
}

func postTrip(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trips", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.HandleCreateTrip(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func createTrip(t *testing.T, h *Handler) *models.TripPlan {
	t.Helper()
	w := postTrip(t, h, `{"origin": "Atlanta, GA", "destination": "Chicago, IL"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var plan models.TripPlan
	require.NoError(t, json.NewDecoder(w.Body).Decode(&plan))
	return &plan
}

func withID(req *http.Request, id string) *http.Request {
	req.SetPathValue("id", id)
	return req
}

func TestHandleCreateTrip(t *testing.T) {
	h, _ := setupTestHandler(t)

	plan := createTrip(t, h)
	assert.NotEmpty(t, plan.ID)
	assert.Equal(t, "Atlanta, GA", plan.Origin)
	assert.Equal(t, "Chicago, IL", plan.Destination)
	require.NotEmpty(t, plan.MajorStops)
	assert.Equal(t, models.StopKindDestination, plan.MajorStops[len(plan.MajorStops)-1].Kind)

	stored, err := h.DB.Trips().GetByID(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.Origin, stored.Origin)
}

func TestHandleCreateTripErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		routeErr   error
		wantStatus int
		wantCode   string
	}{
		{"invalid json", `{"origin":`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"missing origin", `{"destination": "Chicago, IL"}`, nil, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown destination", `{"origin": "Atlanta, GA", "destination": "Nowhere, ZZ"}`, nil, http.StatusUnprocessableEntity, "GEOCODING_FAILED"},
		{"no route", `{"origin": "Atlanta, GA", "destination": "Chicago, IL"}`, errors.New("no road"), http.StatusUnprocessableEntity, "ROUTING_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, router := setupTestHandler(t)
			router.Err = tt.routeErr

			w := postTrip(t, h, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Error.Code)
		})
	}
}

func TestHandleCreateTripGeocodingDetails(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := postTrip(t, h, `{"origin": "Atlantis", "destination": "Chicago, IL"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	response := decodeError(t, w)
	assert.Equal(t, map[string]any{"role": "origin", "input": "Atlantis"}, response.Error.Details)
}

func TestHandleListTrips(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleListTrips(w, httptest.NewRequest(http.MethodGet, "/api/v1/trips", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"trips": [], "total": 0, "limit": 20, "offset": 0}`, w.Body.String())

	createTrip(t, h)
	createTrip(t, h)

	w = httptest.NewRecorder()
	h.HandleListTrips(w, httptest.NewRequest(http.MethodGet, "/api/v1/trips?limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response TripListResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 2, response.Total)
	assert.Equal(t, 1, response.Limit)
	require.Len(t, response.Trips, 1)
	assert.Equal(t, "Road Trip: Atlanta, GA → Chicago, IL", response.Trips[0].Name)
}

func TestHandleGetTrip(t *testing.T) {
	h, _ := setupTestHandler(t)
	plan := createTrip(t, h)

	w := httptest.NewRecorder()
	h.HandleGetTrip(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/trips/"+plan.ID, nil), plan.ID))
	require.Equal(t, http.StatusOK, w.Code)

	var got models.TripPlan
	require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
	assert.Equal(t, plan.ID, got.ID)
	assert.Equal(t, len(plan.MajorStops), len(got.MajorStops))
}

func TestHandleGetTripNotFound(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleGetTrip(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/trips/missing", nil), "missing"))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Error.Code)
}

func TestHandleTripExports(t *testing.T) {
	h, _ := setupTestHandler(t)
	plan := createTrip(t, h)

	w := httptest.NewRecorder()
	h.HandleTripGPX(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/trips/"+plan.ID+"/gpx", nil), plan.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gpx+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="trip_Atlanta_GA_Chicago_IL.gpx"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "<gpx")

	w = httptest.NewRecorder()
	h.HandleTripSummary(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/trips/"+plan.ID+"/summary", nil), plan.ID))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "# Road Trip: Atlanta, GA → Chicago, IL\n"))

	w = httptest.NewRecorder()
	h.HandleTripGPX(w, withID(httptest.NewRequest(http.MethodGet, "/api/v1/trips/nope/gpx", nil), "nope"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleDeleteTrip(t *testing.T) {
	h, _ := setupTestHandler(t)
	plan := createTrip(t, h)

	w := httptest.NewRecorder()
	h.HandleDeleteTrip(w, withID(httptest.NewRequest(http.MethodDelete, "/api/v1/trips/"+plan.ID, nil), plan.ID))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	h.HandleDeleteTrip(w, withID(httptest.NewRequest(http.MethodDelete, "/api/v1/trips/"+plan.ID, nil), plan.ID))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleAddressSearch(t *testing.T) {
	h, _ := setupTestHandler(t)

	tests := []struct {
		query string
		want  int
	}{
		{"Atl", 0},
		{"Atlanta", 1},
		{"Springfield", 0},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleAddressSearch(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/address-search?address=%s", tt.query), nil))
			require.Equal(t, http.StatusOK, w.Code)

			var results []map[string]any
			require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&results))
			assert.Len(t, results, tt.want)
		})
	}
}

func TestHandleHealthCheck(t *testing.T) {
	h, _ := setupTestHandler(t)

	w := httptest.NewRecorder()
	h.HandleHealthCheck(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())
}
