package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Coordinates represents a geographic point.
// Lat/Lng is the only axis order used inside the application; provider
// clients and exporters convert at their own boundary.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String formats the coordinates as "lat,lng"
func (c Coordinates) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lng)
}

// RoundCoordinate rounds a coordinate component to 5 decimal places (~1m)
func RoundCoordinate(v float64) float64 {
	return math.Round(v*100000) / 100000
}

// Route is the driving route returned by a router. It is never modified
// after the router returns it.
type Route struct {
	DistanceMeters float64       `json:"distance_meters"`
	DurationSecs   float64       `json:"duration_secs"`
	Geometry       []Coordinates `json:"geometry"`
}

// CityCandidate is a named settlement found while sampling a route
type CityCandidate struct {
	Name             string      `json:"name"`
	Coords           Coordinates `json:"coords"`
	CumulativeMeters float64     `json:"cumulative_meters"`
}

// StopKind classifies a stop on the trip
type StopKind string

const (
	StopKindStart       StopKind = "start"
	StopKindMajorStop   StopKind = "major_stop"
	StopKindVia         StopKind = "via"
	StopKindDestination StopKind = "destination"
	StopKindReturn      StopKind = "return"
	StopKindWaypoint    StopKind = "waypoint"
)

// Stop is a major stop or a waypoint city
type Stop struct {
	Name          string      `json:"name"`
	Coords        Coordinates `json:"coords"`
	Kind          StopKind    `json:"kind"`
	StopNumber    *int        `json:"stop_number,omitempty"`
	IsMajorStop   bool        `json:"is_major_stop"`
	WikivoyageURL string      `json:"wikivoyage_url,omitempty"`
}

// Searchable reports whether places should be searched around this stop.
// The return stop shares the origin's coordinates and is skipped.
func (s *Stop) Searchable() bool {
	return s.Kind != StopKindReturn
}

// Scoreable is the capability shared by every place variant
type Scoreable interface {
	PlaceName() string
	PopularityScore() float64
}

// Place holds the fields common to every search result
type Place struct {
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Location    string      `json:"location"`
	Coords      Coordinates `json:"coords"`
	Rating      float64     `json:"rating"`
	ReviewCount int         `json:"user_ratings_total"`
	Website     string      `json:"website,omitempty"`
	Score       float64     `json:"score"`
}

// PlaceName returns the name used for deduplication
func (p Place) PlaceName() string { return p.Name }

// PopularityScore returns the score computed when the place was created
func (p Place) PopularityScore() float64 { return p.Score }

// Hotel is a pet-friendly lodging option
type Hotel struct {
	Place
	PriceLevel string `json:"price_level,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PlaceID    string `json:"place_id"`
}

// Veterinarian is an emergency vet option
type Veterinarian struct {
	Place
	Is24Hours bool   `json:"is_24_hours"`
	Phone     string `json:"phone,omitempty"`
	PlaceID   string `json:"place_id"`
}

// AttractionType tags an attraction with its category
type AttractionType string

const (
	AttractionPark       AttractionType = "park"
	AttractionMuseum     AttractionType = "museum"
	AttractionRestaurant AttractionType = "restaurant"
	AttractionDogPark    AttractionType = "dog_park"
	AttractionViewpoint  AttractionType = "viewpoint"
	AttractionMonument   AttractionType = "monument"
	AttractionEVCharger  AttractionType = "ev_charger"
)

// Attraction is a point of interest near a stop or along the route
type Attraction struct {
	Place
	Type             AttractionType `json:"type"`
	WikipediaURL     string         `json:"wikipedia_url,omitempty"`
	WikipediaSummary string         `json:"wikipedia_summary,omitempty"`
}

// NationalPark is a National Park Service or Forest Service site
type NationalPark struct {
	Place
	State            string `json:"state"`
	WikipediaURL     string `json:"wikipedia_url,omitempty"`
	WikipediaSummary string `json:"wikipedia_summary,omitempty"`
}

// Attractions holds the ranked attraction lists, one per category.
// List position is display priority.
type Attractions struct {
	NationalParks []NationalPark `json:"national_parks"`
	Monuments     []Attraction   `json:"monuments"`
	Parks         []Attraction   `json:"parks"`
	Museums       []Attraction   `json:"museums"`
	Restaurants   []Attraction   `json:"restaurants"`
	DogParks      []Attraction   `json:"dog_parks"`
	Viewpoints    []Attraction   `json:"viewpoints"`
	EVChargers    []Attraction   `json:"ev_chargers"`
}

// Total returns the number of attractions across all categories
func (a *Attractions) Total() int {
	return len(a.NationalParks) + len(a.Monuments) + len(a.Parks) + len(a.Museums) +
		len(a.Restaurants) + len(a.DogParks) + len(a.Viewpoints) + len(a.EVChargers)
}

// TripPlan is the finished result handed to exporters
type TripPlan struct {
	ID                  string                  `json:"id"`
	GeneratedAt         time.Time               `json:"generated"`
	Origin              string                  `json:"origin"`
	Destination         string                  `json:"destination"`
	ViaCities           []string                `json:"via_cities,omitempty"`
	Roundtrip           bool                    `json:"roundtrip"`
	TotalDistanceMeters float64                 `json:"total_distance_meters"`
	TotalDurationSecs   float64                 `json:"total_duration_secs"`
	RouteGeometry       []Coordinates           `json:"route_geometry"`
	MajorStops          []Stop                  `json:"stops"`
	WaypointCities      []Stop                  `json:"waypoint_cities"`
	Hotels              map[string]Hotel        `json:"hotels"`
	WaypointHotels      map[string]Hotel        `json:"waypoint_hotels"`
	Vets                map[string]Veterinarian `json:"vets"`
	Attractions         Attractions             `json:"attractions"`
}

// TotalDistanceMiles returns the route length in miles
func (t *TripPlan) TotalDistanceMiles() float64 {
	return t.TotalDistanceMeters / 1609.344
}

// TotalDurationHours returns the driving time in hours
func (t *TripPlan) TotalDurationHours() float64 {
	return t.TotalDurationSecs / 3600
}

// Name returns the display name, e.g. "Road Trip: Atlanta, GA → Chicago, IL"
func (t *TripPlan) Name() string {
	parts := []string{t.Origin, t.Destination}
	parts = append(parts, t.ViaCities...)
	if len(t.ViaCities) > 0 || t.Roundtrip {
		parts = append(parts, t.Origin)
	}
	return "Road Trip: " + strings.Join(parts, " → ")
}

// TripSummary is the list view of a stored trip
type TripSummary struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Origin              string    `json:"origin"`
	Destination         string    `json:"destination"`
	TotalDistanceMeters float64   `json:"total_distance_meters"`
	MajorStops          int       `json:"major_stops"`
	CreatedAt           time.Time `json:"created_at"`
}

// GeocodeCacheEntry is a cached forward geocoding result
type GeocodeCacheEntry struct {
	Query       string
	Coords      Coordinates
	DisplayName string
}
