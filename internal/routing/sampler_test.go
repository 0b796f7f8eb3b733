package routing

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-trip-planner/internal/distance"
	"road-trip-planner/internal/models"
)

type reverseFunc func(ctx context.Context, c models.Coordinates) (string, error)

func (f reverseFunc) ReverseGeocode(ctx context.Context, c models.Coordinates) (string, error) {
	return f(ctx, c)
}

// straightLine interpolates n+1 vertices between a and b
func straightLine(a, b models.Coordinates, n int) []models.Coordinates {
	pts := make([]models.Coordinates, n+1)
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		pts[i] = models.Coordinates{
			Lat: a.Lat + (b.Lat-a.Lat)*f,
			Lng: a.Lng + (b.Lng-a.Lng)*f,
		}
	}
	return pts
}

var (
	atlanta = models.Coordinates{Lat: 33.7490, Lng: -84.3880}
	chicago = models.Coordinates{Lat: 41.8781, Lng: -87.6298}
)

func TestSamplePointsStraightLine(t *testing.T) {
	line := straightLine(atlanta, chicago, 1000)
	points := SamplePoints(line, 50)

	// ~587 miles of route gives 11 crossings of 50 miles
	require.Len(t, points, 11)
	for i, p := range points {
		miles := distance.MetersToMiles(p.CumulativeMeters)
		assert.GreaterOrEqual(t, miles, float64(50*(i+1)))
		if i > 0 {
			gap := distance.MetersToMiles(p.CumulativeMeters - points[i-1].CumulativeMeters)
			assert.GreaterOrEqual(t, gap, 50.0)
			assert.Less(t, gap, 51.0)
		}
	}
}

func TestSamplePointsShortRoute(t *testing.T) {
	line := straightLine(atlanta, models.Coordinates{Lat: 33.80, Lng: -84.40}, 10)
	assert.Empty(t, SamplePoints(line, 50))
}

func TestSamplePointsInvalidInput(t *testing.T) {
	line := straightLine(atlanta, chicago, 10)
	assert.Empty(t, SamplePoints(line, 0))
	assert.Empty(t, SamplePoints(line, -5))
	assert.Empty(t, SamplePoints(line[:1], 50))
}

func TestSampleCitiesOrderingInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	counter := 0
	reverse := reverseFunc(func(ctx context.Context, c models.Coordinates) (string, error) {
		counter++
		if counter%3 == 0 {
			return "", nil
		}
		return string(rune('A' + counter%26)), nil
	})

	for trial := 0; trial < 20; trial++ {
		line := make([]models.Coordinates, 200)
		cur := models.Coordinates{Lat: 35, Lng: -95}
		for i := range line {
			cur.Lat += rng.Float64() - 0.5
			cur.Lng += rng.Float64() - 0.5
			line[i] = cur
		}

		cities, err := SampleCities(context.Background(), line, 25, reverse)
		require.NoError(t, err)
		for i := 1; i < len(cities); i++ {
			assert.GreaterOrEqual(t, cities[i].CumulativeMeters, cities[i-1].CumulativeMeters)
		}
	}
}

func TestSampleCitiesSkipsDuplicatesAndMisses(t *testing.T) {
	line := straightLine(atlanta, chicago, 1000)
	call := 0
	reverse := reverseFunc(func(ctx context.Context, c models.Coordinates) (string, error) {
		call++
		switch call {
		case 1:
			return "", nil
		case 2:
			return "", errors.New("timeout")
		case 3, 4:
			return "Nashville, TN", nil
		case 5:
			return "Clarksville, TN", nil
		default:
			return "", nil
		}
	})

	cities, err := SampleCities(context.Background(), line, 50, reverse)
	require.NoError(t, err)
	require.Len(t, cities, 2)

	assert.Equal(t, "Nashville, TN", cities[0].Name)
	assert.Equal(t, "Clarksville, TN", cities[1].Name)

	// misses still advance the baseline, so the first hit is the third sample
	assert.GreaterOrEqual(t, distance.MetersToMiles(cities[0].CumulativeMeters), 150.0)
	assert.Less(t, distance.MetersToMiles(cities[0].CumulativeMeters), 155.0)
	assert.Equal(t, 11, call)
}

func TestSampleCitiesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reverse := reverseFunc(func(ctx context.Context, c models.Coordinates) (string, error) {
		cancel()
		return "", ctx.Err()
	})

	cities, err := SampleCities(ctx, straightLine(atlanta, chicago, 500), 50, reverse)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, cities)
}
