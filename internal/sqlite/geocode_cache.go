package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"road-trip-planner/internal/models"
)

type geocodeCacheRepository struct {
	store *Store
}

func normalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func (r *geocodeCacheRepository) Get(ctx context.Context, query string) (*models.GeocodeCacheEntry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entry := models.GeocodeCacheEntry{Query: query}
	err := r.store.db.QueryRowContext(ctx,
		`SELECT lat, lng, display_name FROM geocode_cache WHERE query = ?`,
		normalizeQuery(query),
	).Scan(&entry.Coords.Lat, &entry.Coords.Lng, &entry.DisplayName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geocode cache entry: %w", err)
	}

	return &entry, nil
}

func (r *geocodeCacheRepository) Set(ctx context.Context, entry *models.GeocodeCacheEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, err := r.store.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO geocode_cache (query, lat, lng, display_name) VALUES (?, ?, ?, ?)`,
		normalizeQuery(entry.Query), entry.Coords.Lat, entry.Coords.Lng, entry.DisplayName,
	)
	if err != nil {
		return fmt.Errorf("failed to set geocode cache entry: %w", err)
	}

	return nil
}

type reverseGeocodeCacheRepository struct {
	store *Store
}

func (r *reverseGeocodeCacheRepository) Get(ctx context.Context, coords models.Coordinates) (string, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var name string
	err := r.store.db.QueryRowContext(ctx,
		`SELECT name FROM reverse_geocode_cache WHERE lat = ? AND lng = ?`,
		models.RoundCoordinate(coords.Lat), models.RoundCoordinate(coords.Lng),
	).Scan(&name)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get reverse geocode cache entry: %w", err)
	}

	return name, true, nil
}

func (r *reverseGeocodeCacheRepository) Set(ctx context.Context, coords models.Coordinates, name string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	_, err := r.store.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO reverse_geocode_cache (lat, lng, name) VALUES (?, ?, ?)`,
		models.RoundCoordinate(coords.Lat), models.RoundCoordinate(coords.Lng), name,
	)
	if err != nil {
		return fmt.Errorf("failed to set reverse geocode cache entry: %w", err)
	}

	return nil
}
