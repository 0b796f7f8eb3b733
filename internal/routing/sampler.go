package routing

import (
	"context"
	"log/slog"

	"road-trip-planner/internal/distance"
	"road-trip-planner/internal/models"
)

// SamplePoint is a route vertex reached after crossing a sampling interval
type SamplePoint struct {
	Coords           models.Coordinates
	CumulativeMeters float64
}

// SamplePoints walks the polyline and returns the vertex at the end of each
// segment where the distance since the previous sample reaches intervalMiles.
// The baseline advances on every sample.
func SamplePoints(geometry []models.Coordinates, intervalMiles float64) []SamplePoint {
	if intervalMiles <= 0 || len(geometry) < 2 {
		return nil
	}

	interval := distance.MilesToMeters(intervalMiles)
	var points []SamplePoint
	var cumulative, lastCheck float64

	for i := 1; i < len(geometry); i++ {
		cumulative += distance.Haversine(geometry[i-1], geometry[i], distance.Meters)
		if cumulative-lastCheck >= interval {
			points = append(points, SamplePoint{Coords: geometry[i], CumulativeMeters: cumulative})
			lastCheck = cumulative
		}
	}

	return points
}

// SampleCities reverse-geocodes every sample point along the route and
// returns the distinct settlements in route order. Lookup failures count as
// misses; only context cancellation is returned as an error.
func SampleCities(ctx context.Context, geometry []models.Coordinates, intervalMiles float64, reverse ReverseGeocoder) ([]models.CityCandidate, error) {
	samples := SamplePoints(geometry, intervalMiles)
	slog.Info("sampling cities along route", "interval_miles", intervalMiles, "samples", len(samples))

	seen := make(map[string]bool)
	var cities []models.CityCandidate

	for _, sp := range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name, err := reverse.ReverseGeocode(ctx, sp.Coords)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("reverse geocode failed, skipping sample",
				"lat", sp.Coords.Lat, "lng", sp.Coords.Lng, "error", err)
			continue
		}
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true
		cities = append(cities, models.CityCandidate{
			Name:             name,
			Coords:           sp.Coords,
			CumulativeMeters: sp.CumulativeMeters,
		})
		slog.Debug("city found", "name", name, "miles", distance.MetersToMiles(sp.CumulativeMeters))
	}

	slog.Info("city sampling complete", "cities", len(cities))
	return cities, nil
}
