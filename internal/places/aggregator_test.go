package places

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-trip-planner/internal/config"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/travelguide"
)

type fakeSearcher struct {
	mu     sync.Mutex
	calls  map[string]int
	nearby func(req NearbyRequest) ([]PlaceRecord, error)
	text   func(req TextRequest) ([]PlaceRecord, error)
}

func (f *fakeSearcher) count(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[key]++
}

func (f *fakeSearcher) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *fakeSearcher) SearchNearby(ctx context.Context, req NearbyRequest) ([]PlaceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.count(strings.Join(req.IncludedTypes, ","))
	if f.nearby == nil {
		return nil, nil
	}
	return f.nearby(req)
}

func (f *fakeSearcher) SearchText(ctx context.Context, req TextRequest) ([]PlaceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.count("text")
	if f.text == nil {
		return nil, nil
	}
	return f.text(req)
}

type fakeArticles struct{}

func (fakeArticles) Article(ctx context.Context, query string) (*travelguide.Article, error) {
	if strings.Contains(query, "Unknown") {
		return nil, nil
	}
	return &travelguide.Article{
		Title:   query,
		URL:     "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(query, " ", "_"),
		Summary: query + " is notable.",
	}, nil
}

var (
	atlanta = models.Coordinates{Lat: 33.7490, Lng: -84.3880}
	chicago = models.Coordinates{Lat: 41.8781, Lng: -87.6298}
)

func at(c models.Coordinates) *models.Coordinates { return &c }

func tripRequest() Request {
	zero, one, two := 0, 1, 2
	return Request{
		RouteGeometry: []models.Coordinates{atlanta, chicago},
		MajorStops: []models.Stop{
			{Name: "Atlanta, GA", Coords: atlanta, Kind: models.StopKindStart, StopNumber: &zero, IsMajorStop: true},
			{Name: "Chicago, IL", Coords: chicago, Kind: models.StopKindDestination, StopNumber: &one, IsMajorStop: true},
			{Name: "Atlanta, GA (return)", Coords: atlanta, Kind: models.StopKindReturn, StopNumber: &two, IsMajorStop: true},
		},
		WaypointCities: []models.Stop{
			{Name: "Nashville, TN", Coords: nashville, Kind: models.StopKindWaypoint},
		},
		SampledCities: []models.CityCandidate{{Name: "Nashville, TN", Coords: nashville}},
	}
}

func tripSearcher() *fakeSearcher {
	return &fakeSearcher{
		nearby: func(req NearbyRequest) ([]PlaceRecord, error) {
			switch strings.Join(req.IncludedTypes, ",") {
			case "lodging":
				return []PlaceRecord{
					{ID: "h1", Name: "Motel 6", Rating: 4.0, ReviewCount: 300},
					{ID: "h2", Name: "Grand Boutique Hotel", Rating: 4.9, ReviewCount: 5000},
					{ID: "h3", Name: "Hampton Inn", Rating: 4.4, ReviewCount: 900, Location: at(req.Center)},
					{ID: "h4", Name: "Red Roof Inn", Rating: 3.2, ReviewCount: 900},
				}, nil
			case "veterinary_care":
				return []PlaceRecord{
					{ID: "v1", Name: "Daytime Clinic", Rating: 4.8, ReviewCount: 400,
						OpeningHours: &OpeningHours{WeekdayDescriptions: week("8:00 AM – 5:00 PM")}},
					{ID: "v2", Name: "Emergency Vet", Rating: 4.5, ReviewCount: 200,
						OpeningHours: &OpeningHours{WeekdayDescriptions: week("Open 24 hours")}},
				}, nil
			case "park,national_park,tourist_attraction":
				return []PlaceRecord{
					{ID: "p1", Name: "Piedmont Park", Rating: 4.8, ReviewCount: 30000},
					{ID: "p2", Name: "Lincoln Park", Rating: 4.8, ReviewCount: 20000},
					{ID: "p3", Name: "Tiny Park", Rating: 4.0, ReviewCount: 5},
				}, nil
			case "park,national_park,state_park":
				return []PlaceRecord{
					{ID: "rp1", Name: "Red Top Mountain State Park", Rating: 4.7, ReviewCount: 6000},
					{ID: "rp2", Name: "Pocket Park", Rating: 4.7, ReviewCount: 100},
				}, nil
			case "museum,art_gallery,historical_landmark":
				return nil, errors.New("quota exceeded")
			}
			return nil, nil
		},
		text: func(req TextRequest) ([]PlaceRecord, error) {
			switch {
			case strings.HasPrefix(req.Query, "dog friendly restaurant"):
				return []PlaceRecord{{ID: "r1", Name: "Park Tavern", Rating: 4.4, ReviewCount: 3000}}, nil
			case strings.HasPrefix(req.Query, "dog park"):
				return []PlaceRecord{{ID: "d1", Name: "Freedom Barkway", Rating: 4.5, ReviewCount: 700}}, nil
			case strings.HasPrefix(req.Query, "national forest OR") && strings.HasSuffix(req.Query, "Georgia"):
				return []PlaceRecord{
					{ID: "n1", Name: "Chattahoochee-Oconee National Forest", FormattedAddress: "Gainesville, Georgia, USA", Rating: 4.7, ReviewCount: 900},
					{ID: "n2", Name: "Kennesaw Mountain National Battlefield Park", FormattedAddress: "Kennesaw, Georgia, USA", Rating: 4.8, ReviewCount: 9000},
					{ID: "n3", Name: "Sweetwater Creek State Park", FormattedAddress: "Lithia Springs, Georgia, USA", Rating: 4.8, ReviewCount: 9000},
				}, nil
			case req.Query == "National Forest Georgia":
				return []PlaceRecord{
					{ID: "n1", Name: "Chattahoochee-Oconee National Forest", FormattedAddress: "Gainesville, Georgia, USA", Rating: 4.7, ReviewCount: 900},
					{ID: "n4", Name: "Unknown National Forest Trailhead", FormattedAddress: "Blairsville, Georgia, USA"},
				}, nil
			case req.Query == "monument OR memorial Illinois":
				return []PlaceRecord{
					{ID: "m1", Name: "Lincoln Tomb State Historic Site", FormattedAddress: "Springfield, Illinois, USA", Rating: 4.8, ReviewCount: 3000},
					{ID: "m2", Name: "Oak Ridge Cemetery Memorial", FormattedAddress: "Springfield, Illinois, USA", Rating: 4.8, ReviewCount: 3000},
				}, nil
			case strings.HasPrefix(req.Query, "scenic viewpoint"):
				return []PlaceRecord{{ID: "vp1", Name: "Sunset Overlook", Rating: 4.6, ReviewCount: 500, Location: at(req.BiasCenter)}}, nil
			}
			return nil, nil
		},
	}
}

func newTestAggregator(search Searcher, workers int) *Aggregator {
	return NewAggregator(search, fakeArticles{}, Options{
		Categories:           config.DefaultCategories(),
		ParkSampleMiles:      100,
		ViewpointSampleMiles: 100,
		Workers:              workers,
	})
}

func TestCollect(t *testing.T) {
	search := tripSearcher()
	res, err := newTestAggregator(search, 1).Collect(context.Background(), tripRequest())
	require.NoError(t, err)

	t.Run("hotels skip non-chains and low ratings", func(t *testing.T) {
		require.Len(t, res.Hotels, 2)
		assert.Equal(t, "Hampton Inn", res.Hotels["Atlanta, GA"].Name)
		assert.Equal(t, "Chicago, IL", res.Hotels["Chicago, IL"].Location)
		assert.Equal(t, chicago, res.Hotels["Chicago, IL"].Coords)
		assert.NotContains(t, res.Hotels, "Atlanta, GA (return)")
	})

	t.Run("waypoint hotels", func(t *testing.T) {
		require.Contains(t, res.WaypointHotels, "Nashville, TN")
		assert.Equal(t, "Hampton Inn", res.WaypointHotels["Nashville, TN"].Name)
	})

	t.Run("24 hour vet wins", func(t *testing.T) {
		vet := res.Vets["Chicago, IL"]
		assert.Equal(t, "Emergency Vet", vet.Name)
		assert.True(t, vet.Is24Hours)
	})

	t.Run("return stop is not searched", func(t *testing.T) {
		assert.Equal(t, 3, search.callCount("lodging"), "two major stops plus one waypoint")
		assert.Equal(t, 2, search.callCount("veterinary_care"))
	})

	t.Run("parks merge route and stop results", func(t *testing.T) {
		names := make([]string, 0, len(res.Attractions.Parks))
		for _, p := range res.Attractions.Parks {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"Piedmont Park", "Lincoln Park", "Red Top Mountain State Park"}, names)
		assert.Equal(t, "~", res.Attractions.Parks[2].Location[:1])
	})

	t.Run("failed category is empty", func(t *testing.T) {
		assert.Empty(t, res.Attractions.Museums)
	})

	t.Run("restaurants and dog parks deduplicated across stops", func(t *testing.T) {
		require.Len(t, res.Attractions.Restaurants, 1)
		require.Len(t, res.Attractions.DogParks, 1)
		assert.Equal(t, "Atlanta, GA", res.Attractions.Restaurants[0].Location, "first stop wins")
	})

	t.Run("national parks", func(t *testing.T) {
		parks := res.Attractions.NationalParks
		require.Len(t, parks, 3)
		assert.Equal(t, "Kennesaw Mountain National Battlefield Park", parks[0].Name)
		assert.Equal(t, "Georgia", parks[0].State)
		assert.Contains(t, parks[0].WikipediaURL, "Kennesaw_Mountain")

		forest := parks[2]
		assert.Equal(t, "Unknown National Forest Trailhead", forest.Name)
		assert.Equal(t, 4.5, forest.Rating)
		assert.Equal(t, 10, forest.ReviewCount)
		assert.Empty(t, forest.WikipediaURL)
	})

	t.Run("monuments", func(t *testing.T) {
		require.Len(t, res.Attractions.Monuments, 1)
		m := res.Attractions.Monuments[0]
		assert.Equal(t, "Lincoln Tomb State Historic Site", m.Name)
		assert.Equal(t, "Illinois", m.Location)
		assert.Equal(t, models.AttractionMonument, m.Type)
		assert.Equal(t, "Lincoln Tomb State Historic Site is notable.", m.WikipediaSummary)
	})

	t.Run("viewpoints along route", func(t *testing.T) {
		require.Len(t, res.Attractions.Viewpoints, 1)
		assert.Equal(t, models.AttractionViewpoint, res.Attractions.Viewpoints[0].Type)
	})

	t.Run("ev chargers off by default", func(t *testing.T) {
		assert.Empty(t, res.Attractions.EVChargers)
		assert.Zero(t, search.callCount("electric_vehicle_charging_station"))
	})
}

func TestCollectParallelMatchesSequential(t *testing.T) {
	sequential, err := newTestAggregator(tripSearcher(), 1).Collect(context.Background(), tripRequest())
	require.NoError(t, err)
	parallel, err := newTestAggregator(tripSearcher(), 8).Collect(context.Background(), tripRequest())
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestCollectCategoriesDisabled(t *testing.T) {
	search := tripSearcher()
	agg := NewAggregator(search, nil, Options{Categories: config.Categories{Vets: true, EVChargers: true}})

	res, err := agg.Collect(context.Background(), tripRequest())
	require.NoError(t, err)

	assert.Empty(t, res.Hotels)
	assert.Empty(t, res.WaypointHotels)
	assert.Len(t, res.Vets, 2)
	assert.Zero(t, search.callCount("lodging"))
	assert.Zero(t, search.callCount("text"))
	assert.Equal(t, 2, search.callCount("electric_vehicle_charging_station"))
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestAggregator(tripSearcher(), 2).Collect(ctx, tripRequest())
	assert.ErrorIs(t, err, context.Canceled)
}
