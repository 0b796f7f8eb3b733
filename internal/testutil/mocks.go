package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"road-trip-planner/internal/distance"
	"road-trip-planner/internal/geocoding"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/places"
	"road-trip-planner/internal/routing"
	"road-trip-planner/internal/travelguide"
)

// MockGeocoder resolves addresses from a fixed table. Reverse lookups are
// answered by ReverseFunc when set.
type MockGeocoder struct {
	mu          sync.Mutex
	Locations   map[string]models.Coordinates
	ReverseFunc func(coords models.Coordinates) string
	Calls       []string
	ReverseHits int
}

func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{Locations: make(map[string]models.Coordinates)}
}

// SetLocation registers the coordinates returned for an address
func (m *MockGeocoder) SetLocation(address string, coords models.Coordinates) {
	m.Locations[address] = coords
}

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (*geocoding.GeocodingResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Calls = append(m.Calls, address)
	m.mu.Unlock()

	coords, ok := m.Locations[address]
	if !ok {
		return nil, &geocoding.ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}
	return &geocoding.GeocodingResult{Coords: coords, DisplayName: address}, nil
}

func (m *MockGeocoder) GeocodeWithRetry(ctx context.Context, address string, maxRetries int) (*geocoding.GeocodingResult, error) {
	return m.Geocode(ctx, address)
}

func (m *MockGeocoder) ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.ReverseHits++
	m.mu.Unlock()

	if m.ReverseFunc == nil {
		return "", nil
	}
	return m.ReverseFunc(coords), nil
}

func (m *MockGeocoder) Search(ctx context.Context, query string, limit int) ([]geocoding.GeocodingResult, error) {
	var results []geocoding.GeocodingResult
	for address, coords := range m.Locations {
		if strings.Contains(strings.ToLower(address), strings.ToLower(query)) {
			results = append(results, geocoding.GeocodingResult{Coords: coords, DisplayName: address})
		}
		if limit > 0 && len(results) == limit {
			break
		}
	}
	return results, nil
}

// MockRouter returns a straight-line route through the waypoints, split
// into Segments pieces per leg, driven at a constant speed.
type MockRouter struct {
	Segments int
	SpeedMPH float64
	Err      error
	Calls    [][]models.Coordinates
}

func NewMockRouter() *MockRouter {
	return &MockRouter{Segments: 1000, SpeedMPH: 60}
}

func (m *MockRouter) Route(ctx context.Context, waypoints []models.Coordinates) (*models.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.Calls = append(m.Calls, waypoints)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(waypoints) < 2 {
		return nil, &routing.ErrRoutingFailed{Reason: "at least two waypoints required"}
	}

	geometry := []models.Coordinates{waypoints[0]}
	var meters float64
	for i := 1; i < len(waypoints); i++ {
		leg := StraightLine(waypoints[i-1], waypoints[i], m.Segments)
		geometry = append(geometry, leg[1:]...)
		meters += distance.Haversine(waypoints[i-1], waypoints[i], distance.Meters)
	}

	return &models.Route{
		DistanceMeters: meters,
		DurationSecs:   distance.MetersToMiles(meters) / m.SpeedMPH * 3600,
		Geometry:       geometry,
	}, nil
}

// StraightLine interpolates n equal segments between a and b
func StraightLine(a, b models.Coordinates, n int) []models.Coordinates {
	if n < 1 {
		n = 1
	}
	points := make([]models.Coordinates, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		points[i] = models.Coordinates{
			Lat: a.Lat + (b.Lat-a.Lat)*f,
			Lng: a.Lng + (b.Lng-a.Lng)*f,
		}
	}
	return points
}

// MockPlaceSearch answers searches with NearbyFunc and TextFunc and records
// every request. It is safe for concurrent use.
type MockPlaceSearch struct {
	mu          sync.Mutex
	NearbyFunc  func(req places.NearbyRequest) ([]places.PlaceRecord, error)
	TextFunc    func(req places.TextRequest) ([]places.PlaceRecord, error)
	NearbyCalls []places.NearbyRequest
	TextCalls   []places.TextRequest
}

func (m *MockPlaceSearch) SearchNearby(ctx context.Context, req places.NearbyRequest) ([]places.PlaceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.NearbyCalls = append(m.NearbyCalls, req)
	m.mu.Unlock()

	if m.NearbyFunc == nil {
		return nil, nil
	}
	return m.NearbyFunc(req)
}

func (m *MockPlaceSearch) SearchText(ctx context.Context, req places.TextRequest) ([]places.PlaceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.TextCalls = append(m.TextCalls, req)
	m.mu.Unlock()

	if m.TextFunc == nil {
		return nil, nil
	}
	return m.TextFunc(req)
}

// MockTravelGuide returns a fixed URL pattern for every place listed in Known
type MockTravelGuide struct {
	mu    sync.Mutex
	Known map[string]bool
	Err   error
	Calls []string
}

func (m *MockTravelGuide) Lookup(ctx context.Context, placeName string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, placeName)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	city := strings.TrimSpace(strings.SplitN(placeName, ",", 2)[0])
	if !m.Known[city] {
		return "", nil
	}
	return "https://en.wikivoyage.org/wiki/" + strings.ReplaceAll(city, " ", "_"), nil
}

func (m *MockTravelGuide) Article(ctx context.Context, query string) (*travelguide.Article, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &travelguide.Article{
		Title:   query,
		URL:     "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(query, " ", "_"),
		Summary: fmt.Sprintf("%s is a place.", query),
	}, nil
}
