package database

import (
	"context"
	"time"

	"road-trip-planner/internal/models"
)

// DataStore is the interface for data persistence
type DataStore interface {
	Close() error
	HealthCheck(ctx context.Context) error
	GeocodeCache() GeocodeCacheRepository
	ReverseGeocodeCache() ReverseGeocodeCacheRepository
	PlaceCache() PlaceCacheRepository
	Trips() TripRepository
}

// GeocodeCacheRepository caches forward geocoding results by query text
type GeocodeCacheRepository interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, query string) (*models.GeocodeCacheEntry, error)
	Set(ctx context.Context, entry *models.GeocodeCacheEntry) error
}

// ReverseGeocodeCacheRepository caches settlement names by rounded coordinate.
// An empty name is a valid cached answer.
type ReverseGeocodeCacheRepository interface {
	Get(ctx context.Context, coords models.Coordinates) (name string, found bool, err error)
	Set(ctx context.Context, coords models.Coordinates, name string) error
}

// PlaceCacheRepository stores encoded place search responses by request key
type PlaceCacheRepository interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// TripRepository handles trip plan persistence
type TripRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.TripSummary, int, error)
	GetByID(ctx context.Context, id string) (*models.TripPlan, error)
	Create(ctx context.Context, plan *models.TripPlan) error
	Delete(ctx context.Context, id string) error
}
