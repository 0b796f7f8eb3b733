package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"road-trip-planner/internal/database"
	"road-trip-planner/internal/metrics"
	"road-trip-planner/internal/models"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	DefaultUserAgent    = "RoadTripPlanner/2.0 (Personal trip planning)"
)

// GeocodingResult contains the result of a geocoding operation
type GeocodingResult struct {
	Coords      models.Coordinates `json:"coords"`
	DisplayName string             `json:"display_name"`
}

// Geocoder provides address-to-coordinates conversion and the reverse
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*GeocodingResult, error)
	GeocodeWithRetry(ctx context.Context, address string, maxRetries int) (*GeocodingResult, error)
	// ReverseGeocode returns "City, ST", "City", or "" when no settlement is found
	ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error)
	Search(ctx context.Context, query string, limit int) ([]GeocodingResult, error)
}

// ErrGeocodingFailed is returned when an address cannot be geocoded
type ErrGeocodingFailed struct {
	Address string
	Reason  string
}

func (e *ErrGeocodingFailed) Error() string {
	return fmt.Sprintf("geocoding failed for address: %s - %s", e.Address, e.Reason)
}

// Options configures the Nominatim client. Zero values use defaults.
type Options struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Cache             database.GeocodeCacheRepository
	ReverseCache      database.ReverseGeocodeCacheRepository
}

type nominatimGeocoder struct {
	baseURL      string
	userAgent    string
	httpClient   *http.Client
	limiter      *rate.Limiter
	cache        database.GeocodeCacheRepository
	reverseCache database.ReverseGeocodeCacheRepository
}

type nominatimResponse struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

type nominatimReverseResponse struct {
	Error   string `json:"error"`
	Address struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
		Hamlet  string `json:"hamlet"`
		County  string `json:"county"`
		State   string `json:"state"`
	} `json:"address"`
}

// NewNominatimGeocoder creates a new Nominatim geocoder with rate limiting
func NewNominatimGeocoder(opts Options) Geocoder {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNominatimURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 1
	}

	return &nominatimGeocoder{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1),
		cache:        opts.Cache,
		reverseCache: opts.ReverseCache,
	}
}

// get performs a rate-limited GET and decodes the JSON body into out
func (g *nominatimGeocoder) get(ctx context.Context, operation, queryURL string, out any) (err error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return err
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider("nominatim", operation, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (g *nominatimGeocoder) Geocode(ctx context.Context, address string) (*GeocodingResult, error) {
	if g.cache != nil {
		cached, err := g.cache.Get(ctx, address)
		if err != nil {
			slog.Warn("geocode cache read failed", "address", address, "error", err)
		} else if cached != nil {
			metrics.CacheHits.WithLabelValues("geocode").Inc()
			return &GeocodingResult{Coords: cached.Coords, DisplayName: cached.DisplayName}, nil
		}
		metrics.CacheMisses.WithLabelValues("geocode").Inc()
	}

	queryURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.baseURL, url.QueryEscape(address))
	slog.Info("geocoding request", "address", address)

	var results []nominatimResponse
	if err := g.get(ctx, "geocode", queryURL, &results); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("geocoding request failed", "address", address, "error", err)
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

	if len(results) == 0 {
		slog.Warn("no geocoding results found", "address", address)
		return nil, &ErrGeocodingFailed{Address: address, Reason: "no results found"}
	}

	result, err := parseResult(results[0])
	if err != nil {
		slog.Error("invalid geocoding response", "address", address, "error", err)
		return nil, &ErrGeocodingFailed{Address: address, Reason: err.Error()}
	}

	slog.Info("geocoding response", "address", address,
		"lat", result.Coords.Lat, "lng", result.Coords.Lng, "display_name", result.DisplayName)

	if g.cache != nil {
		entry := &models.GeocodeCacheEntry{Query: address, Coords: result.Coords, DisplayName: result.DisplayName}
		if err := g.cache.Set(ctx, entry); err != nil {
			slog.Warn("geocode cache write failed", "address", address, "error", err)
		}
	}

	return result, nil
}

func parseResult(r nominatimResponse) (*GeocodingResult, error) {
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid latitude %q", r.Lat)
	}
	lng, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid longitude %q", r.Lon)
	}
	return &GeocodingResult{
		Coords:      models.Coordinates{Lat: lat, Lng: lng},
		DisplayName: r.DisplayName,
	}, nil
}

func (g *nominatimGeocoder) GeocodeWithRetry(ctx context.Context, address string, maxRetries int) (*GeocodingResult, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error

	for i := 0; i < maxRetries; i++ {
		result, err := g.Geocode(ctx, address)
		if err == nil {
			return result, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		lastErr = err

		if i < maxRetries-1 {
			backoff := time.Duration(1<<uint(i)) * time.Second
			slog.Info("geocoding retry", "attempt", i+1, "max", maxRetries, "address", address, "backoff", backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	slog.Error("geocoding failed after retries", "retries", maxRetries, "address", address, "error", lastErr)
	return nil, lastErr
}

func (g *nominatimGeocoder) ReverseGeocode(ctx context.Context, coords models.Coordinates) (string, error) {
	if g.reverseCache != nil {
		name, found, err := g.reverseCache.Get(ctx, coords)
		if err != nil {
			slog.Warn("reverse geocode cache read failed", "lat", coords.Lat, "lng", coords.Lng, "error", err)
		} else if found {
			metrics.CacheHits.WithLabelValues("reverse_geocode").Inc()
			return name, nil
		}
		metrics.CacheMisses.WithLabelValues("reverse_geocode").Inc()
	}

	queryURL := fmt.Sprintf("%s/reverse?lat=%.6f&lon=%.6f&format=json&zoom=10", g.baseURL, coords.Lat, coords.Lng)

	var resp nominatimReverseResponse
	if err := g.get(ctx, "reverse", queryURL, &resp); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &ErrGeocodingFailed{Address: coords.String(), Reason: err.Error()}
	}

	name := settlementName(resp)
	slog.Debug("reverse geocoding response", "lat", coords.Lat, "lng", coords.Lng, "name", name)

	if g.reverseCache != nil {
		if err := g.reverseCache.Set(ctx, coords, name); err != nil {
			slog.Warn("reverse geocode cache write failed", "error", err)
		}
	}

	return name, nil
}

// settlementName formats a reverse geocoding answer. County-only answers
// are not settlements and yield "".
func settlementName(resp nominatimReverseResponse) string {
	a := resp.Address
	city := firstNonEmpty(a.City, a.Town, a.Village, a.Hamlet)
	if city == "" {
		return ""
	}
	if a.State == "" {
		return city
	}
	if abbrev, ok := models.StateAbbrev(a.State); ok {
		return city + ", " + abbrev
	}
	return city + ", " + a.State
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (g *nominatimGeocoder) Search(ctx context.Context, query string, limit int) ([]GeocodingResult, error) {
	queryURL := fmt.Sprintf("%s/search?q=%s&format=json&limit=%d", g.baseURL, url.QueryEscape(query), limit)
	slog.Info("geocoding search request", "query", query, "limit", limit)

	var results []nominatimResponse
	if err := g.get(ctx, "search", queryURL, &results); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("geocoding search failed", "query", query, "error", err)
		return nil, &ErrGeocodingFailed{Address: query, Reason: err.Error()}
	}

	slog.Info("geocoding search response", "query", query, "results_count", len(results))

	geocodingResults := make([]GeocodingResult, 0, len(results))
	for _, r := range results {
		parsed, err := parseResult(r)
		if err != nil {
			slog.Warn("skipping invalid search result", "query", query, "error", err)
			continue
		}
		geocodingResults = append(geocodingResults, *parsed)
	}

	return geocodingResults, nil
}
