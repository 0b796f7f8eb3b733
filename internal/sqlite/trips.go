package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"road-trip-planner/internal/database"
	"road-trip-planner/internal/models"
)

type tripRepository struct {
	store *Store
}

func (r *tripRepository) List(ctx context.Context, limit, offset int) ([]models.TripSummary, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var total int
	if err := r.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	query := `SELECT id, name, origin, destination, total_distance_meters, major_stops, created_at
	          FROM trips
	          ORDER BY created_at DESC
	          LIMIT ? OFFSET ?`

	rows, err := r.store.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	var trips []models.TripSummary
	for rows.Next() {
		var t models.TripSummary
		if err := rows.Scan(&t.ID, &t.Name, &t.Origin, &t.Destination,
			&t.TotalDistanceMeters, &t.MajorStops, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan trip: %w", err)
		}
		trips = append(trips, t)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating trips: %w", err)
	}

	return trips, total, nil
}

func (r *tripRepository) GetByID(ctx context.Context, id string) (*models.TripPlan, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var planJSON string
	err := r.store.db.QueryRowContext(ctx, `SELECT plan_json FROM trips WHERE id = ?`, id).Scan(&planJSON)
	if err == sql.ErrNoRows {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	var plan models.TripPlan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return nil, fmt.Errorf("failed to decode trip %s: %w", id, err)
	}

	return &plan, nil
}

func (r *tripRepository) Create(ctx context.Context, plan *models.TripPlan) error {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode trip: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	query := `INSERT INTO trips (id, name, origin, destination, total_distance_meters, major_stops, plan_json, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.store.db.ExecContext(ctx, query,
		plan.ID, plan.Name(), plan.Origin, plan.Destination,
		plan.TotalDistanceMeters, len(plan.MajorStops), string(planJSON), plan.GeneratedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}

	return nil
}

func (r *tripRepository) Delete(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result, err := r.store.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return database.ErrNotFound
	}

	return nil
}
