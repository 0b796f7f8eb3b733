package places

import (
	"context"
	"fmt"

	"road-trip-planner/internal/models"
)

// Searcher finds places near a point or by free text
type Searcher interface {
	SearchNearby(ctx context.Context, req NearbyRequest) ([]PlaceRecord, error)
	SearchText(ctx context.Context, req TextRequest) ([]PlaceRecord, error)
}

// NearbyRequest searches a circle for places of the included types
type NearbyRequest struct {
	IncludedTypes    []string           `json:"included_types"`
	Center           models.Coordinates `json:"center"`
	RadiusMeters     float64            `json:"radius_meters"`
	MaxResults       int                `json:"max_results"`
	RankByPopularity bool               `json:"rank_by_popularity,omitempty"`
}

// TextRequest is a free text query. A zero BiasRadiusMeters means no location bias.
type TextRequest struct {
	Query            string             `json:"query"`
	BiasCenter       models.Coordinates `json:"bias_center,omitempty"`
	BiasRadiusMeters float64            `json:"bias_radius_meters,omitempty"`
	MaxResults       int                `json:"max_results"`
}

// PlaceRecord is one result from the places provider
type PlaceRecord struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	FormattedAddress string              `json:"formatted_address"`
	Rating           float64             `json:"rating"`
	ReviewCount      int                 `json:"review_count"`
	Location         *models.Coordinates `json:"location,omitempty"`
	Phone            string              `json:"phone,omitempty"`
	Website          string              `json:"website,omitempty"`
	PriceLevel       string              `json:"price_level,omitempty"`
	OpeningHours     *OpeningHours       `json:"opening_hours,omitempty"`
}

// Coords returns the record location, or the zero coordinate when unknown
func (p PlaceRecord) Coords() models.Coordinates {
	if p.Location == nil {
		return models.Coordinates{}
	}
	return *p.Location
}

type OpeningHours struct {
	WeekdayDescriptions []string `json:"weekday_descriptions,omitempty"`
	Periods             []Period `json:"periods,omitempty"`
}

// Period is one opening interval; a nil Close means the place never closes
type Period struct {
	Open  *TimePoint `json:"open,omitempty"`
	Close *TimePoint `json:"close,omitempty"`
}

type TimePoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ErrSearchFailed is returned when the places provider rejects or fails a query
type ErrSearchFailed struct {
	Query  string
	Reason string
}

func (e *ErrSearchFailed) Error() string {
	return fmt.Sprintf("place search failed for %s: %s", e.Query, e.Reason)
}
