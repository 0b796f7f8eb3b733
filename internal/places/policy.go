package places

import (
	"fmt"
	"strings"

	"road-trip-planner/internal/distance"
	"road-trip-planner/internal/models"
)

// Category names one search category in results, logs and metrics
type Category string

const (
	CategoryHotels        Category = "hotels"
	CategoryVets          Category = "vets"
	CategoryRouteParks    Category = "route_parks"
	CategoryParks         Category = "parks"
	CategoryMuseums       Category = "museums"
	CategoryRestaurants   Category = "restaurants"
	CategoryDogParks      Category = "dog_parks"
	CategoryViewpoints    Category = "viewpoints"
	CategoryNationalParks Category = "national_parks"
	CategoryForests       Category = "national_forests"
	CategoryMonuments     Category = "monuments"
	CategoryEVChargers    Category = "ev_chargers"
)

// Policy describes how one category is queried and filtered
type Policy struct {
	Category Category

	// Nearby searches set IncludedTypes; text searches set TextQuery, where
	// %s is replaced by the city or state name.
	IncludedTypes    []string
	TextQuery        string
	RankByPopularity bool
	RadiusMeters     float64
	MaxResults       int

	MinRating  float64
	MinReviews int
	// MaxDistanceKm rejects results farther than this from the search center
	MaxDistanceKm float64
	// Keep caps the results of a single query; 0 keeps all
	Keep int
}

var (
	HotelPolicy = Policy{
		Category: CategoryHotels, IncludedTypes: []string{"lodging"}, RankByPopularity: true,
		RadiusMeters: 25000, MaxResults: 20, MinRating: 3.5, MinReviews: 50, Keep: 1,
	}
	VetPolicy = Policy{
		Category: CategoryVets, IncludedTypes: []string{"veterinary_care"},
		RadiusMeters: 25000, MaxResults: 20, MinRating: 3.0, MinReviews: 10, Keep: 1,
	}
	RouteParkPolicy = Policy{
		Category: CategoryRouteParks, IncludedTypes: []string{"park", "national_park", "state_park"},
		RadiusMeters: 5000, MaxResults: 10, MinRating: 4.5, MinReviews: 500,
	}
	ParkPolicy = Policy{
		Category: CategoryParks, IncludedTypes: []string{"park", "national_park", "tourist_attraction"},
		RadiusMeters: 40000, MaxResults: 20, MinRating: 3.5, MinReviews: 20, Keep: 3,
	}
	MuseumPolicy = Policy{
		Category: CategoryMuseums, IncludedTypes: []string{"museum", "art_gallery", "historical_landmark"},
		RadiusMeters: 40000, MaxResults: 20, MinRating: 4.0, MinReviews: 100, Keep: 3,
	}
	RestaurantPolicy = Policy{
		Category: CategoryRestaurants, TextQuery: "dog friendly restaurant %s",
		RadiusMeters: 40000, MaxResults: 20, MinRating: 4.0, MinReviews: 50, MaxDistanceKm: 50, Keep: 5,
	}
	DogParkPolicy = Policy{
		Category: CategoryDogParks, TextQuery: "dog park %s",
		RadiusMeters: 40000, MaxResults: 15, MinRating: 4.0, MaxDistanceKm: 50, Keep: 2,
	}
	ViewpointPolicy = Policy{
		Category: CategoryViewpoints, TextQuery: "scenic viewpoint OR overlook OR vista OR observation point",
		RadiusMeters: 25000, MaxResults: 5, MinRating: 4.3, MinReviews: 100, MaxDistanceKm: 25,
	}
	NationalParkPolicy = Policy{
		Category:   CategoryNationalParks,
		TextQuery:  "national forest OR national park OR national historic OR national monument %s",
		MaxResults: 20, Keep: 5,
	}
	NationalForestPolicy = Policy{
		Category: CategoryForests, TextQuery: "National Forest %s", MaxResults: 10,
	}
	MonumentPolicy = Policy{
		Category: CategoryMonuments, TextQuery: "monument OR memorial %s", MaxResults: 20,
	}
	EVChargerPolicy = Policy{
		Category: CategoryEVChargers, IncludedTypes: []string{"electric_vehicle_charging_station"},
		RadiusMeters: 25000, MaxResults: 10, Keep: 3,
	}
)

var petFriendlyChains = []string{
	"la quinta", "drury", "kimpton", "red roof", "motel 6",
	"best western", "residence inn", "towneplace", "staybridge",
	"aloft", "element", "extended stay", "candlewood", "homewood",
	"springhill", "fairfield", "comfort inn", "quality inn",
	"sleep inn", "econo lodge", "days inn", "super 8",
	"knights inn", "travelodge", "ramada", "wyndham",
	"howard johnson", "microtel", "baymont", "hampton", "hilton",
	"marriott", "hyatt", "sheraton", "westin", "doubletree",
	"holiday inn", "courtyard", "country inn",
}

var nationalParkKeywords = []string{
	"national park", "national monument", "national recreation area",
	"national memorial", "national historic", "national historical",
	"national military park", "national battlefield", "national seashore",
	"national lakeshore", "national preserve", "national parkway",
	"national river", "national wild", "national scenic", "national forest",
}

var nationalParkExclusions = []string{"state park", "city park", "county park", "regional park"}

var monumentKeywords = []string{
	"monument", "memorial", "statue", "historic site", "historical marker", "commemorative",
}

var monumentExclusions = []string{"cemetery", "funeral", "pet memorial", "plaque company"}

var viewpointKeywords = []string{
	"overlook", "viewpoint", "scenic", "vista", "lookout",
	"observation", "panorama", "view point", "viewing area",
	"summit", "peak", "point", "rim", "canyon view", "valley view",
}

// Nearby builds the nearby request for this policy centred on c
func (p Policy) Nearby(c models.Coordinates) NearbyRequest {
	return NearbyRequest{
		IncludedTypes:    p.IncludedTypes,
		Center:           c,
		RadiusMeters:     p.RadiusMeters,
		MaxResults:       p.MaxResults,
		RankByPopularity: p.RankByPopularity,
	}
}

// Text builds the text request for this policy. name fills the query
// template; a zero RadiusMeters sends no location bias.
func (p Policy) Text(name string, c models.Coordinates) TextRequest {
	query := p.TextQuery
	if strings.Contains(query, "%s") {
		query = fmt.Sprintf(query, name)
	}
	req := TextRequest{Query: query, MaxResults: p.MaxResults}
	if p.RadiusMeters > 0 {
		req.BiasCenter = c
		req.BiasRadiusMeters = p.RadiusMeters
	}
	return req
}

// Accepts applies the rating, review and distance thresholds. center is the
// search center used for the distance check.
func (p Policy) Accepts(r PlaceRecord, center models.Coordinates) bool {
	if r.Rating < p.MinRating || r.ReviewCount < p.MinReviews {
		return false
	}
	if p.MaxDistanceKm > 0 {
		if distance.Haversine(center, coordsOr(r, center), distance.Kilometers) > p.MaxDistanceKm {
			return false
		}
	}
	return true
}

// coordsOr returns the record location, falling back to the search center
func coordsOr(r PlaceRecord, fallback models.Coordinates) models.Coordinates {
	if r.Location == nil {
		return fallback
	}
	return *r.Location
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// IsPetFriendlyChain reports whether a hotel name belongs to a chain known to accept pets
func IsPetFriendlyChain(name string) bool {
	return containsAny(strings.ToLower(name), petFriendlyChains)
}

// IsNationalSite reports whether a result from the national parks query
// is a federal site in the given state
func IsNationalSite(name, address, stateName string) bool {
	if !strings.Contains(address, stateName) {
		return false
	}
	lower := strings.ToLower(name)
	return containsAny(lower, nationalParkKeywords) && !containsAny(lower, nationalParkExclusions)
}

// IsNationalForest filters the supplementary forest query
func IsNationalForest(name, address, stateName string) bool {
	return strings.Contains(address, stateName) && strings.Contains(strings.ToLower(name), "national forest")
}

// IsMonument reports whether a result from the monuments query is a public
// monument or memorial in the given state
func IsMonument(name, address, stateName string) bool {
	if !strings.Contains(address, stateName) {
		return false
	}
	lower := strings.ToLower(name)
	return containsAny(lower, monumentKeywords) && !containsAny(lower, monumentExclusions)
}

// IsViewpoint looks for a viewpoint keyword in the name or address
func IsViewpoint(name, address string) bool {
	return containsAny(strings.ToLower(name)+" "+strings.ToLower(address), viewpointKeywords)
}

func milesFromStart(cumulativeMeters float64) string {
	return fmt.Sprintf("~%d mi from start", int(distance.MetersToMiles(cumulativeMeters)))
}
