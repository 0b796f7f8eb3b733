package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/tkrajina/gpxgo/gpx"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"road-trip-planner/internal/models"
)

// gpxLimits caps how many attractions of each category become waypoints
var gpxLimits = map[string]int{
	"national_parks": 10,
	"monuments":      5,
	"parks":          10,
	"museums":        5,
	"restaurants":    10,
	"dog_parks":      10,
	"viewpoints":     10,
	"ev_chargers":    5,
}

var gpxIcons = map[string]string{
	"national_parks": "🏞️",
	"monuments":      "🗿",
	"parks":          "🌲",
	"museums":        "🏛️",
	"restaurants":    "🍽️",
	"dog_parks":      "🐾",
	"viewpoints":     "📸",
	"ev_chargers":    "🔌",
}

var titleCase = cases.Title(language.English)

// categoryTitle turns "dog_parks" into "Dog Parks"
func categoryTitle(category string) string {
	return titleCase.String(strings.ReplaceAll(category, "_", " "))
}

func point(c models.Coordinates, name, desc, kind string) gpx.GPXPoint {
	return gpx.GPXPoint{
		Point:       gpx.Point{Latitude: c.Lat, Longitude: c.Lng},
		Name:        name,
		Description: desc,
		Type:        kind,
	}
}

// sortedKeys returns map keys in order so output is stable
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// attractionGroup is one category of attractions flattened to places
type attractionGroup struct {
	key    string
	places []models.Place
}

func attractionGroups(a models.Attractions) []attractionGroup {
	flatten := func(items []models.Attraction) []models.Place {
		out := make([]models.Place, len(items))
		for i, it := range items {
			out[i] = it.Place
		}
		return out
	}
	parks := make([]models.Place, len(a.NationalParks))
	for i, p := range a.NationalParks {
		parks[i] = p.Place
	}

	return []attractionGroup{
		{"national_parks", parks},
		{"monuments", flatten(a.Monuments)},
		{"parks", flatten(a.Parks)},
		{"museums", flatten(a.Museums)},
		{"restaurants", flatten(a.Restaurants)},
		{"dog_parks", flatten(a.DogParks)},
		{"viewpoints", flatten(a.Viewpoints)},
		{"ev_chargers", flatten(a.EVChargers)},
	}
}

// BuildGPX converts a plan into a GPX document: stops, hotels, vets and
// top attractions as waypoints, and the full route as one track.
func BuildGPX(plan *models.TripPlan) *gpx.GPX {
	doc := &gpx.GPX{
		Version:     "1.1",
		Creator:     "road-trip-planner",
		Name:        plan.Name(),
		Description: fmt.Sprintf("Pet-friendly road trip generated on %s", plan.GeneratedAt.Format("2006-01-02")),
	}
	if !plan.GeneratedAt.IsZero() {
		t := plan.GeneratedAt
		doc.Time = &t
	}

	for i, stop := range plan.MajorStops {
		parts := []string{"Major stop on your road trip"}
		if h, ok := plan.Hotels[stop.Name]; ok {
			parts = append(parts, fmt.Sprintf("Hotel: %s (%.1f⭐)", h.Name, h.Rating))
		}
		if v, ok := plan.Vets[stop.Name]; ok {
			parts = append(parts, fmt.Sprintf("Vet: %s (%s)", v.Name, hoursLabel(v.Is24Hours)))
		}
		if stop.WikivoyageURL != "" {
			parts = append(parts, "Travel guide: "+stop.WikivoyageURL)
		}
		doc.Waypoints = append(doc.Waypoints, point(stop.Coords,
			fmt.Sprintf("Stop %d: %s", i, stop.Name), strings.Join(parts, " | "), "Major Stop"))
	}

	for _, w := range plan.WaypointCities {
		parts := []string{"Optional stop with hotel available"}
		if h, ok := plan.WaypointHotels[w.Name]; ok {
			parts = append(parts, fmt.Sprintf("Hotel: %s (%.1f⭐)", h.Name, h.Rating))
		}
		doc.Waypoints = append(doc.Waypoints, point(w.Coords, "Waypoint: "+w.Name, strings.Join(parts, " | "), "Waypoint"))
	}

	for _, city := range sortedKeys(plan.Hotels) {
		h := plan.Hotels[city]
		desc := fmt.Sprintf("Pet-friendly hotel | %.1f⭐ (%d reviews) | %s", h.Rating, h.ReviewCount, h.Address)
		if h.Phone != "" {
			desc += " | Phone: " + h.Phone
		}
		doc.Waypoints = append(doc.Waypoints, point(h.Coords, "🏨 "+h.Name, desc, "Lodging"))
	}
	for _, city := range sortedKeys(plan.WaypointHotels) {
		h := plan.WaypointHotels[city]
		desc := fmt.Sprintf("Pet-friendly hotel | %.1f⭐ | %s", h.Rating, h.Address)
		doc.Waypoints = append(doc.Waypoints, point(h.Coords, "🏨 "+h.Name+" (Waypoint)", desc, "Lodging"))
	}

	for _, city := range sortedKeys(plan.Vets) {
		v := plan.Vets[city]
		icon, hours := "🏥", "Regular hours"
		if v.Is24Hours {
			icon, hours = "🏥⏰", "24/7 Emergency"
		}
		desc := fmt.Sprintf("Veterinarian | %s | %.1f⭐ (%d reviews) | %s", hours, v.Rating, v.ReviewCount, v.Address)
		if v.Phone != "" {
			desc += " | Phone: " + v.Phone
		}
		doc.Waypoints = append(doc.Waypoints, point(v.Coords, icon+" "+v.Name, desc, "Medical"))
	}

	for _, group := range attractionGroups(plan.Attractions) {
		title := categoryTitle(group.key)
		items := group.places
		if limit := gpxLimits[group.key]; len(items) > limit {
			items = items[:limit]
		}
		for _, p := range items {
			desc := fmt.Sprintf("%s | %.1f⭐ (%d reviews)", title, p.Rating, p.ReviewCount)
			if p.Address != "" {
				desc += " | " + p.Address
			}
			doc.Waypoints = append(doc.Waypoints, point(p.Coords, gpxIcons[group.key]+" "+p.Name, desc, title))
		}
	}

	segment := gpx.GPXTrackSegment{Points: make([]gpx.GPXPoint, len(plan.RouteGeometry))}
	for i, c := range plan.RouteGeometry {
		segment.Points[i] = gpx.GPXPoint{Point: gpx.Point{Latitude: c.Lat, Longitude: c.Lng}}
	}
	doc.Tracks = []gpx.GPXTrack{{
		Name:        plan.Name() + " - Route",
		Description: "Full driving route along actual roads",
		Segments:    []gpx.GPXTrackSegment{segment},
	}}

	return doc
}

func hoursLabel(is24 bool) string {
	if is24 {
		return "24/7"
	}
	return "Regular hours"
}

// WriteGPX writes the plan as an indented GPX 1.1 document
func WriteGPX(w io.Writer, plan *models.TripPlan) error {
	b, err := BuildGPX(plan).ToXml(gpx.ToXmlParams{Version: "1.1", Indent: true})
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
