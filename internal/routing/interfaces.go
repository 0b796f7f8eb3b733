package routing

import (
	"context"
	"fmt"

	"road-trip-planner/internal/models"
)

// Router returns a driving route through the given waypoints, in order
type Router interface {
	Route(ctx context.Context, waypoints []models.Coordinates) (*models.Route, error)
}

// ReverseGeocoder resolves a coordinate to a settlement name.
// An empty name means no settlement was found.
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error)
}

// TravelGuide returns the travel guide URL for a place, or "" if there is none
type TravelGuide interface {
	Lookup(ctx context.Context, placeName string) (string, error)
}

// ErrRoutingFailed is returned when no driving route can be obtained
type ErrRoutingFailed struct {
	Reason string
}

func (e *ErrRoutingFailed) Error() string {
	return fmt.Sprintf("routing failed: %s", e.Reason)
}
