// Package app wires the configured providers, caches and store into a
// ready-to-use planner. Both the CLI and the HTTP server start from here.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"road-trip-planner/internal/config"
	"road-trip-planner/internal/database"
	"road-trip-planner/internal/geocoding"
	"road-trip-planner/internal/places"
	"road-trip-planner/internal/planner"
	"road-trip-planner/internal/routing"
	"road-trip-planner/internal/sqlite"
	"road-trip-planner/internal/travelguide"
	"road-trip-planner/internal/valkey"
)

// App holds the long-lived dependencies built from a Config
type App struct {
	Store    *sqlite.Store
	Geocoder geocoding.Geocoder
	Planner  *planner.Planner

	valkey *valkey.Cache
}

// New opens the store and builds every provider client named by cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	dbPath := cfg.Database.Path
	if dbPath == "" {
		p, err := database.GetDefaultDBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	slog.Info("initializing data store", "path", dbPath)
	store, err := sqlite.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize data store: %w", err)
	}

	a := &App{Store: store}

	placeCache, err := a.placeCache(ctx, cfg.Cache)
	if err != nil {
		a.Close()
		return nil, err
	}

	geoOpts := geocoding.Options{
		BaseURL:           cfg.Geocoding.BaseURL,
		UserAgent:         cfg.Geocoding.UserAgent,
		Timeout:           cfg.Geocoding.Timeout,
		RequestsPerSecond: cfg.Geocoding.RequestsPerSecond,
	}
	if cfg.Cache.Backend != "none" {
		geoOpts.Cache = store.GeocodeCache()
		geoOpts.ReverseCache = store.ReverseGeocodeCache()
	}
	a.Geocoder = geocoding.NewNominatimGeocoder(geoOpts)

	router, err := newRouter(cfg.Routing)
	if err != nil {
		a.Close()
		return nil, err
	}

	wiki := travelguide.New(travelguide.Options{
		WikivoyageURL:     cfg.TravelGuide.WikivoyageURL,
		WikipediaURL:      cfg.TravelGuide.WikipediaURL,
		UserAgent:         cfg.TravelGuide.UserAgent,
		Timeout:           cfg.TravelGuide.Timeout,
		RequestsPerSecond: cfg.TravelGuide.RequestsPerSecond,
	})
	var guide routing.TravelGuide
	if cfg.Categories.TravelGuides {
		guide = wiki
	}

	var aggregator *places.Aggregator
	if cfg.Categories.NeedsPlaces() {
		var search places.Searcher = places.NewGooglePlaces(places.GoogleOptions{
			APIKey:            cfg.Places.APIKey,
			BaseURL:           cfg.Places.BaseURL,
			Timeout:           cfg.Places.Timeout,
			RequestsPerSecond: cfg.Places.RequestsPerSecond,
		})
		if placeCache != nil {
			search = places.NewCachedSearcher(search, placeCache, cfg.Cache.PlacesTTL)
		}
		aggregator = places.NewAggregator(search, wiki, places.Options{
			Categories:           cfg.Categories,
			ParkSampleMiles:      cfg.Planner.ParkSampleMiles,
			ViewpointSampleMiles: cfg.Planner.ViewpointSampleMiles,
			Workers:              cfg.Planner.Workers,
		})
	} else {
		slog.Info("all place categories disabled, skipping places provider")
	}

	a.Planner = planner.New(a.Geocoder, router, guide, aggregator, planner.SettingsFromConfig(cfg))
	return a, nil
}

func (a *App) placeCache(ctx context.Context, cfg config.CacheConfig) (database.PlaceCacheRepository, error) {
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "valkey":
		cache, err := valkey.New(cfg.ValkeyAddr)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := cache.Ping(pingCtx); err != nil {
			cache.Close()
			return nil, fmt.Errorf("valkey ping %s: %w", cfg.ValkeyAddr, err)
		}
		slog.Info("using valkey place cache", "addr", cfg.ValkeyAddr)
		a.valkey = cache
		return cache, nil
	default:
		return a.Store.PlaceCache(), nil
	}
}

func newRouter(cfg config.RoutingConfig) (routing.Router, error) {
	if cfg.Provider == "google" {
		r, err := routing.NewGoogleRouter(cfg.GoogleAPIKey, cfg.GoogleBaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create google router: %w", err)
		}
		return r, nil
	}
	return routing.NewOSRMRouter(cfg.OSRMURL, cfg.Timeout), nil
}

// Close releases the cache client and the store
func (a *App) Close() error {
	if a.valkey != nil {
		a.valkey.Close()
	}
	return a.Store.Close()
}
