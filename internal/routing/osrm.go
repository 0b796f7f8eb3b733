package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"road-trip-planner/internal/metrics"
	"road-trip-planner/internal/models"
)

// DefaultOSRMURL is the public OSRM demo server
const DefaultOSRMURL = "https://router.project-osrm.org"

type osrmRouter struct {
	baseURL    string
	httpClient *http.Client
}

type osrmRouteResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"`
	Duration float64 `json:"duration"`
	Geometry struct {
		// GeoJSON order: [lon, lat]
		Coordinates [][]float64 `json:"coordinates"`
	} `json:"geometry"`
}

// NewOSRMRouter creates a router backed by the OSRM route service
func NewOSRMRouter(baseURL string, timeout time.Duration) Router {
	if baseURL == "" {
		baseURL = DefaultOSRMURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &osrmRouter{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (r *osrmRouter) Route(ctx context.Context, waypoints []models.Coordinates) (route *models.Route, err error) {
	if len(waypoints) < 2 {
		return nil, &ErrRoutingFailed{Reason: "at least two waypoints are required"}
	}

	start := time.Now()
	defer func() { metrics.ObserveProvider("osrm", "route", start, err) }()

	coords := make([]string, len(waypoints))
	for i, p := range waypoints {
		coords[i] = fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
	}

	queryURL := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=geojson&steps=true",
		r.baseURL, strings.Join(coords, ";"))
	slog.Info("osrm route request", "waypoints", len(waypoints))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, &ErrRoutingFailed{Reason: err.Error()}
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		slog.Error("osrm request failed", "error", err)
		return nil, &ErrRoutingFailed{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		slog.Error("osrm api error", "status", resp.StatusCode, "body", string(body))
		return nil, &ErrRoutingFailed{Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))}
	}

	var osrmResp osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		slog.Error("failed to decode osrm response", "error", err)
		return nil, &ErrRoutingFailed{Reason: err.Error()}
	}

	if osrmResp.Code != "Ok" {
		slog.Error("osrm returned error code", "code", osrmResp.Code, "message", osrmResp.Message)
		return nil, &ErrRoutingFailed{Reason: fmt.Sprintf("OSRM error: %s %s", osrmResp.Code, osrmResp.Message)}
	}
	if len(osrmResp.Routes) == 0 {
		return nil, &ErrRoutingFailed{Reason: "no route found"}
	}

	best := osrmResp.Routes[0]
	geometry := make([]models.Coordinates, 0, len(best.Geometry.Coordinates))
	for _, c := range best.Geometry.Coordinates {
		if len(c) < 2 {
			continue
		}
		geometry = append(geometry, models.Coordinates{Lat: c[1], Lng: c[0]})
	}
	if len(geometry) < 2 {
		return nil, &ErrRoutingFailed{Reason: "route geometry is empty"}
	}

	slog.Info("osrm route response",
		"distance_m", best.Distance, "duration_s", best.Duration, "points", len(geometry))

	return &models.Route{
		DistanceMeters: best.Distance,
		DurationSecs:   best.Duration,
		Geometry:       geometry,
	}, nil
}
