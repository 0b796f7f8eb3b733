// Package planner turns a trip request into a finished TripPlan: geocode,
// route, sample cities, select stops, then search and rank places.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"road-trip-planner/internal/config"
	"road-trip-planner/internal/geocoding"
	"road-trip-planner/internal/metrics"
	"road-trip-planner/internal/models"
	"road-trip-planner/internal/places"
	"road-trip-planner/internal/routing"
)

// Stage names a pipeline step reported to a ProgressFunc
type Stage string

const (
	StageGeocoding Stage = "geocoding"
	StageRouting   Stage = "routing"
	StageSampling  Stage = "sampling"
	StageStops     Stage = "stops"
	StagePlaces    Stage = "places"
	StageDone      Stage = "done"
)

// ProgressFunc receives a short message as each stage starts
type ProgressFunc func(stage Stage, message string)

// Request describes the trip to plan. Zero TargetHours and
// WaypointIntervalMiles use the planner settings.
type Request struct {
	Origin                string   `json:"origin"`
	Destination           string   `json:"destination"`
	Via                   []string `json:"via,omitempty"`
	Roundtrip             bool     `json:"roundtrip"`
	TargetHours           float64  `json:"target_hours,omitempty"`
	WaypointIntervalMiles float64  `json:"waypoint_interval_miles,omitempty"`
}

// Validate trims the request in place and reports missing inputs
func (r *Request) Validate() error {
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)
	if r.Origin == "" {
		return fmt.Errorf("%w: origin is required", ErrInvalidRequest)
	}
	if r.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidRequest)
	}
	if len(r.Via) > 0 {
		via := make([]string, len(r.Via))
		for i, v := range r.Via {
			via[i] = strings.TrimSpace(v)
			if via[i] == "" {
				return fmt.Errorf("%w: via city %d is empty", ErrInvalidRequest, i+1)
			}
		}
		r.Via = via
	}
	if r.TargetHours < 0 {
		return fmt.Errorf("%w: target hours must be positive", ErrInvalidRequest)
	}
	if r.WaypointIntervalMiles < 0 {
		return fmt.Errorf("%w: waypoint interval must be positive", ErrInvalidRequest)
	}
	return nil
}

type Settings struct {
	TargetHours           float64
	AverageSpeedMPH       float64
	WaypointIntervalMiles float64
	CitySampleMiles       float64
	GeocodeRetries        int
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		TargetHours:           cfg.Planner.TargetHours,
		AverageSpeedMPH:       cfg.Planner.AverageSpeedMPH,
		WaypointIntervalMiles: cfg.Planner.WaypointIntervalMiles,
		CitySampleMiles:       cfg.Planner.CitySampleMiles,
		GeocodeRetries:        cfg.Geocoding.Retries,
	}
}

// Planner runs the trip pipeline. The guide and aggregator are optional.
type Planner struct {
	geocoder   geocoding.Geocoder
	router     routing.Router
	guide      routing.TravelGuide
	aggregator *places.Aggregator
	settings   Settings

	now   func() time.Time
	newID func() string
}

func New(geocoder geocoding.Geocoder, router routing.Router, guide routing.TravelGuide, aggregator *places.Aggregator, settings Settings) *Planner {
	if settings.TargetHours <= 0 {
		settings.TargetHours = routing.DefaultTargetHours
	}
	if settings.AverageSpeedMPH <= 0 {
		settings.AverageSpeedMPH = routing.DefaultAverageSpeedMPH
	}
	if settings.WaypointIntervalMiles <= 0 {
		settings.WaypointIntervalMiles = routing.DefaultWaypointIntervalMiles
	}
	if settings.CitySampleMiles <= 0 {
		settings.CitySampleMiles = 50
	}
	if settings.GeocodeRetries < 1 {
		settings.GeocodeRetries = 1
	}

	return &Planner{
		geocoder:   geocoder,
		router:     router,
		guide:      guide,
		aggregator: aggregator,
		settings:   settings,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Plan builds a TripPlan. Geocoding, routing and validation failures are
// fatal; every other provider failure only leaves gaps in the plan. A
// cancelled ctx returns its error and no plan.
func (p *Planner) Plan(ctx context.Context, req Request, progress ProgressFunc) (plan *models.TripPlan, err error) {
	start := time.Now()
	defer func() {
		metrics.PlansTotal.WithLabelValues(resultLabel(err)).Inc()
		if err == nil {
			metrics.PlanDuration.Observe(time.Since(start).Seconds())
		}
	}()

	if progress == nil {
		progress = func(Stage, string) {}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	progress(StageGeocoding, "Geocoding locations")
	origin, err := p.geocode(ctx, "origin", req.Origin)
	if err != nil {
		return nil, err
	}
	dest, err := p.geocode(ctx, "destination", req.Destination)
	if err != nil {
		return nil, err
	}
	via := make([]routing.Endpoint, 0, len(req.Via))
	viaCoords := make([]models.Coordinates, 0, len(req.Via))
	for _, name := range req.Via {
		e, err := p.geocode(ctx, "via", name)
		if err != nil {
			return nil, err
		}
		via = append(via, e)
		viaCoords = append(viaCoords, e.Coords)
	}

	progress(StageRouting, "Calculating route")
	route, err := p.router.Route(ctx, routing.RouteWaypoints(origin.Coords, dest.Coords, viaCoords, req.Roundtrip))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrNoRoute{Err: err}
	}
	slog.Info("route calculated",
		"miles", fmt.Sprintf("%.1f", route.DistanceMeters/1609.344),
		"hours", fmt.Sprintf("%.1f", route.DurationSecs/3600))

	progress(StageSampling, "Finding cities along the route")
	candidates, err := routing.SampleCities(ctx, route.Geometry, p.settings.CitySampleMiles, p.geocoder)
	if err != nil {
		return nil, err
	}
	slog.Info("cities sampled", "count", len(candidates))

	progress(StageStops, "Selecting overnight stops")
	hours := req.TargetHours
	if hours <= 0 {
		hours = p.settings.TargetHours
	}
	interval := req.WaypointIntervalMiles
	if interval <= 0 {
		interval = p.settings.WaypointIntervalMiles
	}
	majors, waypoints := routing.SelectStops(ctx, routing.StopRequest{
		Origin:                origin,
		Destination:           dest,
		Via:                   via,
		Roundtrip:             req.Roundtrip,
		Candidates:            candidates,
		TargetMiles:           routing.TargetMiles(hours, p.settings.AverageSpeedMPH),
		WaypointIntervalMiles: interval,
	}, p.guide)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slog.Info("stops selected", "major_stops", len(majors), "waypoints", len(waypoints))

	plan = &models.TripPlan{
		ID:                  p.newID(),
		GeneratedAt:         p.now().UTC(),
		Origin:              req.Origin,
		Destination:         req.Destination,
		ViaCities:           req.Via,
		Roundtrip:           req.Roundtrip,
		TotalDistanceMeters: route.DistanceMeters,
		TotalDurationSecs:   route.DurationSecs,
		RouteGeometry:       route.Geometry,
		MajorStops:          majors,
		WaypointCities:      waypoints,
		Hotels:              map[string]models.Hotel{},
		WaypointHotels:      map[string]models.Hotel{},
		Vets:                map[string]models.Veterinarian{},
	}

	if p.aggregator != nil {
		progress(StagePlaces, "Searching hotels, vets and attractions")
		res, err := p.aggregator.Collect(ctx, places.Request{
			RouteGeometry:  route.Geometry,
			MajorStops:     majors,
			WaypointCities: waypoints,
			SampledCities:  candidates,
		})
		if err != nil {
			return nil, err
		}
		plan.Hotels = res.Hotels
		plan.WaypointHotels = res.WaypointHotels
		plan.Vets = res.Vets
		plan.Attractions = res.Attractions
		slog.Info("places collected", "summary", res.String())
	}

	progress(StageDone, plan.Name())
	return plan, nil
}

func (p *Planner) geocode(ctx context.Context, role, input string) (routing.Endpoint, error) {
	res, err := p.geocoder.GeocodeWithRetry(ctx, input, p.settings.GeocodeRetries)
	if err != nil {
		if ctx.Err() != nil {
			return routing.Endpoint{}, ctx.Err()
		}
		return routing.Endpoint{}, &ErrInputNotFound{Role: role, Input: input, Err: err}
	}
	slog.Info("location geocoded", "role", role, "input", input, "lat", res.Coords.Lat, "lng", res.Coords.Lng)
	return routing.Endpoint{Name: input, Coords: res.Coords}, nil
}

func resultLabel(err error) string {
	var notFound *ErrInputNotFound
	var noRoute *ErrNoRoute
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrInvalidRequest):
		return "invalid"
	case errors.As(err, &notFound):
		return "input_not_found"
	case errors.As(err, &noRoute):
		return "no_route"
	default:
		return "error"
	}
}
