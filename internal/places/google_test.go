package places

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-trip-planner/internal/models"
)

func newTestPlaces(url string) Searcher {
	return NewGooglePlaces(GoogleOptions{APIKey: "test-key", BaseURL: url, RequestsPerSecond: 1000})
}

const samplePlaces = `{"places":[
  {"id":"p1","displayName":{"text":"BluePearl Pet Hospital"},"formattedAddress":"Nashville, TN, USA",
   "location":{"latitude":36.15,"longitude":-86.8},"rating":4.6,"userRatingCount":812,
   "internationalPhoneNumber":"+1 615-555-0100","websiteUri":"https://bluepearl.example",
   "regularOpeningHours":{"weekdayDescriptions":["Monday: Open 24 hours"],"periods":[{"open":{"day":0,"hour":0,"minute":0}}]}},
  {"id":"p2","displayName":{"text":"No Location Vet"},"rating":3.9}
]}`

func TestSearchNearby(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/places:searchNearby", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Goog-Api-Key"))
		assert.Contains(t, r.Header.Get("X-Goog-FieldMask"), "places.regularOpeningHours")

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []any{"veterinary_care"}, body["includedTypes"])
		assert.Equal(t, float64(20), body["maxResultCount"])
		assert.NotContains(t, body, "rankPreference")
		circle := body["locationRestriction"].(map[string]any)["circle"].(map[string]any)
		assert.Equal(t, float64(25000), circle["radius"])
		assert.Equal(t, 36.1627, circle["center"].(map[string]any)["latitude"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(samplePlaces))
	}))
	defer server.Close()

	records, err := newTestPlaces(server.URL).SearchNearby(context.Background(), VetPolicy.Nearby(nashville))
	require.NoError(t, err)
	require.Len(t, records, 2)

	vet := records[0]
	assert.Equal(t, "p1", vet.ID)
	assert.Equal(t, "BluePearl Pet Hospital", vet.Name)
	assert.Equal(t, 812, vet.ReviewCount)
	assert.Equal(t, &models.Coordinates{Lat: 36.15, Lng: -86.8}, vet.Location)
	assert.Equal(t, "+1 615-555-0100", vet.Phone)
	require.NotNil(t, vet.OpeningHours)
	require.Len(t, vet.OpeningHours.Periods, 1)
	assert.NotNil(t, vet.OpeningHours.Periods[0].Open)
	assert.Nil(t, vet.OpeningHours.Periods[0].Close)

	assert.Nil(t, records[1].Location)
	assert.Nil(t, records[1].OpeningHours)
	assert.Equal(t, models.Coordinates{}, records[1].Coords())
}

func TestSearchText(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/places:searchText", r.URL.Path)
		body = nil
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	searcher := newTestPlaces(server.URL)

	records, err := searcher.SearchText(context.Background(), DogParkPolicy.Text("Nashville, TN", nashville))
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, "dog park Nashville, TN", body["textQuery"])
	assert.Equal(t, float64(15), body["maxResultCount"])
	assert.Contains(t, body, "locationBias")

	_, err = searcher.SearchText(context.Background(), MonumentPolicy.Text("Georgia", models.Coordinates{}))
	require.NoError(t, err)
	assert.Equal(t, "monument OR memorial Georgia", body["textQuery"])
	assert.NotContains(t, body, "locationBias")
}

func TestSearchPopularityRank(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "POPULARITY", body["rankPreference"])
		w.Write([]byte(`{"places":[]}`))
	}))
	defer server.Close()

	_, err := newTestPlaces(server.URL).SearchNearby(context.Background(), HotelPolicy.Nearby(nashville))
	require.NoError(t, err)
}

func TestSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"message":"API key not valid"}}`))
	}))
	defer server.Close()

	_, err := newTestPlaces(server.URL).SearchText(context.Background(), DogParkPolicy.Text("Nashville, TN", nashville))
	require.Error(t, err)

	var searchErr *ErrSearchFailed
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, "dog park Nashville, TN", searchErr.Query)
	assert.Contains(t, searchErr.Reason, "HTTP 403")
	assert.Contains(t, searchErr.Reason, "API key not valid")
}

func TestSearchInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	_, err := newTestPlaces(server.URL).SearchNearby(context.Background(), VetPolicy.Nearby(nashville))
	var searchErr *ErrSearchFailed
	require.ErrorAs(t, err, &searchErr)
	assert.Contains(t, searchErr.Reason, "invalid response")
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPlaces("http://127.0.0.1:1").SearchNearby(ctx, VetPolicy.Nearby(nashville))
	assert.ErrorIs(t, err, context.Canceled)
}
