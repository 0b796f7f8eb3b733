package routing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"googlemaps.github.io/maps"

	"road-trip-planner/internal/metrics"
	"road-trip-planner/internal/models"
)

type googleRouter struct {
	client *maps.Client
}

// NewGoogleRouter creates a router backed by the Google Directions API.
// baseURL is only set in tests.
func NewGoogleRouter(apiKey, baseURL string) (Router, error) {
	opts := []maps.ClientOption{maps.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, maps.WithBaseURL(baseURL))
	}

	client, err := maps.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &googleRouter{client: client}, nil
}

func (g *googleRouter) Route(ctx context.Context, waypoints []models.Coordinates) (route *models.Route, err error) {
	if len(waypoints) < 2 {
		return nil, &ErrRoutingFailed{Reason: "at least two waypoints are required"}
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider("google_directions", "route", start, err) }()

	req := &maps.DirectionsRequest{
		Origin:      waypoints[0].String(),
		Destination: waypoints[len(waypoints)-1].String(),
		Mode:        maps.TravelModeDriving,
	}
	for _, w := range waypoints[1 : len(waypoints)-1] {
		req.Waypoints = append(req.Waypoints, w.String())
	}

	slog.Info("google directions request", "waypoints", len(waypoints))

	routes, _, err := g.client.Directions(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("google directions failed", "error", err)
		return nil, &ErrRoutingFailed{Reason: err.Error()}
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, &ErrRoutingFailed{Reason: "no route found"}
	}

	best := routes[0]
	var distance, duration float64
	for _, leg := range best.Legs {
		distance += float64(leg.Distance.Meters)
		duration += leg.Duration.Seconds()
	}

	path, err := best.OverviewPolyline.Decode()
	if err != nil {
		return nil, &ErrRoutingFailed{Reason: fmt.Sprintf("invalid overview polyline: %v", err)}
	}

	geometry := make([]models.Coordinates, len(path))
	for i, p := range path {
		geometry[i] = models.Coordinates{Lat: p.Lat, Lng: p.Lng}
	}

	slog.Info("google directions response",
		"distance_m", distance, "duration_s", duration, "points", len(geometry))

	return &models.Route{
		DistanceMeters: distance,
		DurationSecs:   duration,
		Geometry:       geometry,
	}, nil
}
