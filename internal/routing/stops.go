package routing

import (
	"context"
	"log/slog"

	"road-trip-planner/internal/distance"
	"road-trip-planner/internal/models"
)

// MajorStopThreshold is the fraction of the target daily distance after
// which a candidate city becomes an overnight stop
const MajorStopThreshold = 0.8

const (
	DefaultTargetHours           = 8.0
	DefaultAverageSpeedMPH       = 65.0
	DefaultWaypointIntervalMiles = 100.0
)

// TargetMiles converts a daily drive time into a distance
func TargetMiles(hours, mph float64) float64 {
	if hours <= 0 {
		hours = DefaultTargetHours
	}
	if mph <= 0 {
		mph = DefaultAverageSpeedMPH
	}
	return hours * mph
}

// Endpoint is a named, geocoded trip input
type Endpoint struct {
	Name   string
	Coords models.Coordinates
}

// RouteWaypoints returns the order in which the router visits the trip inputs
func RouteWaypoints(origin, dest models.Coordinates, via []models.Coordinates, roundtrip bool) []models.Coordinates {
	points := []models.Coordinates{origin, dest}
	points = append(points, via...)
	if len(via) > 0 || roundtrip {
		points = append(points, origin)
	}
	return points
}

// Decision is the outcome of classifying one candidate city
type Decision int

const (
	Drop Decision = iota
	Waypoint
	Promote
)

func (d Decision) String() string {
	switch d {
	case Promote:
		return "promote"
	case Waypoint:
		return "waypoint"
	default:
		return "drop"
	}
}

// StopSelection tracks the last major stop and the last stop of either kind
// while candidates are consumed in route order.
type StopSelection struct {
	TargetMiles           float64
	WaypointIntervalMiles float64

	lastMajorStop models.Coordinates
	lastWaypoint  models.Coordinates
}

// NewStopSelection starts a selection anchored at the origin
func NewStopSelection(origin models.Coordinates, targetMiles, waypointIntervalMiles float64) *StopSelection {
	return &StopSelection{
		TargetMiles:           targetMiles,
		WaypointIntervalMiles: waypointIntervalMiles,
		lastMajorStop:         origin,
		lastWaypoint:          origin,
	}
}

// Classify decides what a candidate at c would become without changing state
func (s *StopSelection) Classify(c models.Coordinates) Decision {
	return s.Decide(
		distance.Haversine(s.lastMajorStop, c, distance.Miles),
		distance.Haversine(s.lastWaypoint, c, distance.Miles),
	)
}

// Decide classifies a candidate from its straight-line distances in miles to
// the last major stop and to the last stop of either kind
func (s *StopSelection) Decide(fromMajorStop, fromLastStop float64) Decision {
	if fromMajorStop >= s.TargetMiles*MajorStopThreshold {
		return Promote
	}
	if fromLastStop >= s.WaypointIntervalMiles {
		return Waypoint
	}
	return Drop
}

// Apply advances the anchors for a decision taken at c
func (s *StopSelection) Apply(c models.Coordinates, d Decision) {
	switch d {
	case Promote:
		s.lastMajorStop = c
		s.lastWaypoint = c
	case Waypoint:
		s.lastWaypoint = c
	}
}

// StopRequest holds everything SelectStops needs
type StopRequest struct {
	Origin                Endpoint
	Destination           Endpoint
	Via                   []Endpoint
	Roundtrip             bool
	Candidates            []models.CityCandidate
	TargetMiles           float64
	WaypointIntervalMiles float64
}

// SelectStops splits the sampled cities into major stops and waypoints.
// Major stops are ordered origin, promoted cities, destination, via cities
// and, for round trips, the return to the origin. guide may be nil.
func SelectStops(ctx context.Context, req StopRequest, guide TravelGuide) (majors, waypoints []models.Stop) {
	lookup := func(name string) string {
		if guide == nil {
			return ""
		}
		url, err := guide.Lookup(ctx, name)
		if err != nil {
			slog.Warn("travel guide lookup failed", "place", name, "error", err)
			return ""
		}
		return url
	}

	addMajor := func(e Endpoint, kind models.StopKind, url string) {
		n := len(majors)
		majors = append(majors, models.Stop{
			Name:          e.Name,
			Coords:        e.Coords,
			Kind:          kind,
			StopNumber:    &n,
			IsMajorStop:   true,
			WikivoyageURL: url,
		})
	}

	originURL := lookup(req.Origin.Name)
	addMajor(req.Origin, models.StopKindStart, originURL)

	sel := NewStopSelection(req.Origin.Coords, req.TargetMiles, req.WaypointIntervalMiles)
	for _, c := range req.Candidates {
		d := sel.Classify(c.Coords)
		sel.Apply(c.Coords, d)

		switch d {
		case Promote:
			slog.Info("major stop selected", "city", c.Name, "miles", distance.MetersToMiles(c.CumulativeMeters))
			addMajor(Endpoint{Name: c.Name, Coords: c.Coords}, models.StopKindMajorStop, lookup(c.Name))
		case Waypoint:
			slog.Info("waypoint city selected", "city", c.Name, "miles", distance.MetersToMiles(c.CumulativeMeters))
			waypoints = append(waypoints, models.Stop{
				Name:          c.Name,
				Coords:        c.Coords,
				Kind:          models.StopKindWaypoint,
				WikivoyageURL: lookup(c.Name),
			})
		}
	}

	addMajor(req.Destination, models.StopKindDestination, lookup(req.Destination.Name))

	for _, v := range req.Via {
		addMajor(v, models.StopKindVia, lookup(v.Name))
	}

	if req.Roundtrip || len(req.Via) > 0 {
		addMajor(Endpoint{Name: req.Origin.Name + " (return)", Coords: req.Origin.Coords}, models.StopKindReturn, originURL)
	}

	return majors, waypoints
}
