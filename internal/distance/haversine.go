package distance

import (
	"math"

	"road-trip-planner/internal/models"
)

// Unit selects the Earth radius used by Haversine
type Unit string

const (
	Miles      Unit = "miles"
	Kilometers Unit = "km"
	Meters     Unit = "meters"
)

const (
	MetersPerMile      = 1609.344
	MetersPerKilometer = 1000.0

	earthRadiusMiles  = 3959.0
	earthRadiusKm     = 6371.0
	earthRadiusMeters = 6371000.0
)

func earthRadius(unit Unit) float64 {
	switch unit {
	case Kilometers:
		return earthRadiusKm
	case Meters:
		return earthRadiusMeters
	default:
		return earthRadiusMiles
	}
}

// Haversine calculates the great-circle distance between two points.
// Inputs are not validated; NaN coordinates yield NaN.
func Haversine(a, b models.Coordinates, unit Unit) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLng := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadius(unit) * c
}

// MilesToMeters converts miles to meters
func MilesToMeters(miles float64) float64 {
	return miles * MetersPerMile
}

// MetersToMiles converts meters to miles
func MetersToMiles(meters float64) float64 {
	return meters / MetersPerMile
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
