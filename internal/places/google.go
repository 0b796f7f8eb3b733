package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"road-trip-planner/internal/metrics"
	"road-trip-planner/internal/models"
)

const DefaultGoogleURL = "https://places.googleapis.com"

const fieldMask = "places.displayName,places.formattedAddress,places.location,places.rating," +
	"places.userRatingCount,places.priceLevel,places.id,places.internationalPhoneNumber," +
	"places.websiteUri,places.currentOpeningHours,places.regularOpeningHours"

// GoogleOptions configures the Places API client. Zero values use defaults.
type GoogleOptions struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
}

type googlePlaces struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGooglePlaces creates a Places API (New) client with rate limiting
func NewGooglePlaces(opts GoogleOptions) Searcher {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultGoogleURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}

	return &googlePlaces{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
	}
}

type googleLatLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type googleCircle struct {
	Center googleLatLng `json:"center"`
	Radius float64      `json:"radius"`
}

type googleArea struct {
	Circle googleCircle `json:"circle"`
}

type nearbyBody struct {
	IncludedTypes       []string   `json:"includedTypes"`
	LocationRestriction googleArea `json:"locationRestriction"`
	RankPreference      string     `json:"rankPreference,omitempty"`
	MaxResultCount      int        `json:"maxResultCount"`
}

type textBody struct {
	TextQuery      string      `json:"textQuery"`
	LocationBias   *googleArea `json:"locationBias,omitempty"`
	MaxResultCount int         `json:"maxResultCount"`
}

type googleResponse struct {
	Places []googlePlace `json:"places"`
}

type googlePlace struct {
	ID          string `json:"id"`
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress         string        `json:"formattedAddress"`
	Location                 *googleLatLng `json:"location"`
	Rating                   float64       `json:"rating"`
	UserRatingCount          int           `json:"userRatingCount"`
	PriceLevel               string        `json:"priceLevel"`
	InternationalPhoneNumber string        `json:"internationalPhoneNumber"`
	WebsiteURI               string        `json:"websiteUri"`
	RegularOpeningHours      *googleHours  `json:"regularOpeningHours"`
}

type googleHours struct {
	WeekdayDescriptions []string `json:"weekdayDescriptions"`
	Periods             []struct {
		Open  *TimePoint `json:"open"`
		Close *TimePoint `json:"close"`
	} `json:"periods"`
}

func circle(center models.Coordinates, radius float64) googleArea {
	return googleArea{Circle: googleCircle{
		Center: googleLatLng{Latitude: center.Lat, Longitude: center.Lng},
		Radius: radius,
	}}
}

func (g *googlePlaces) SearchNearby(ctx context.Context, req NearbyRequest) ([]PlaceRecord, error) {
	body := nearbyBody{
		IncludedTypes:       req.IncludedTypes,
		LocationRestriction: circle(req.Center, req.RadiusMeters),
		MaxResultCount:      req.MaxResults,
	}
	if req.RankByPopularity {
		body.RankPreference = "POPULARITY"
	}

	query := fmt.Sprintf("%s near %s", strings.Join(req.IncludedTypes, ","), req.Center)
	return g.post(ctx, "nearby", "/v1/places:searchNearby", query, body)
}

func (g *googlePlaces) SearchText(ctx context.Context, req TextRequest) ([]PlaceRecord, error) {
	body := textBody{
		TextQuery:      req.Query,
		MaxResultCount: req.MaxResults,
	}
	if req.BiasRadiusMeters > 0 {
		area := circle(req.BiasCenter, req.BiasRadiusMeters)
		body.LocationBias = &area
	}

	return g.post(ctx, "text", "/v1/places:searchText", req.Query, body)
}

func (g *googlePlaces) post(ctx context.Context, operation, path, query string, body any) (records []PlaceRecord, err error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider("google_places", operation, start, err) }()

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", g.apiKey)
	req.Header.Set("X-Goog-FieldMask", fieldMask)

	slog.Debug("places request", "operation", operation, "query", query)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ErrSearchFailed{Query: query, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &ErrSearchFailed{Query: query, Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))}
	}

	var decoded googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &ErrSearchFailed{Query: query, Reason: "invalid response: " + err.Error()}
	}

	records = make([]PlaceRecord, 0, len(decoded.Places))
	for _, p := range decoded.Places {
		records = append(records, p.record())
	}

	slog.Debug("places response", "operation", operation, "query", query, "results_count", len(records))
	return records, nil
}

func (p googlePlace) record() PlaceRecord {
	r := PlaceRecord{
		ID:               p.ID,
		Name:             p.DisplayName.Text,
		FormattedAddress: p.FormattedAddress,
		Rating:           p.Rating,
		ReviewCount:      p.UserRatingCount,
		Phone:            p.InternationalPhoneNumber,
		Website:          p.WebsiteURI,
		PriceLevel:       p.PriceLevel,
	}
	if p.Location != nil {
		r.Location = &models.Coordinates{Lat: p.Location.Latitude, Lng: p.Location.Longitude}
	}
	if h := p.RegularOpeningHours; h != nil {
		hours := &OpeningHours{WeekdayDescriptions: h.WeekdayDescriptions}
		for _, period := range h.Periods {
			hours.Periods = append(hours.Periods, Period{Open: period.Open, Close: period.Close})
		}
		r.OpeningHours = hours
	}
	return r
}
