package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type placeCacheRepository struct {
	store *Store
	now   func() time.Time
}

func (r *placeCacheRepository) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

func (r *placeCacheRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var payload []byte
	err := r.store.db.QueryRowContext(ctx,
		`SELECT payload FROM place_cache WHERE cache_key = ? AND expires_at > ?`,
		key, r.clock().Unix(),
	).Scan(&payload)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get place cache entry: %w", err)
	}

	return payload, true, nil
}

func (r *placeCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := r.clock()
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM place_cache WHERE expires_at <= ?`, now.Unix()); err != nil {
		return fmt.Errorf("failed to purge expired place cache entries: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO place_cache (cache_key, payload, expires_at) VALUES (?, ?, ?)`,
		key, value, now.Add(ttl).Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to set place cache entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
