package places

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"time"

	"road-trip-planner/internal/database"
	"road-trip-planner/internal/metrics"
)

const DefaultCacheTTL = 7 * 24 * time.Hour

// CachedSearcher serves repeated queries from a place cache. Cache failures
// are logged and fall through to the wrapped searcher.
type CachedSearcher struct {
	next  Searcher
	cache database.PlaceCacheRepository
	ttl   time.Duration
}

func NewCachedSearcher(next Searcher, cache database.PlaceCacheRepository, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedSearcher{next: next, cache: cache, ttl: ttl}
}

func (c *CachedSearcher) SearchNearby(ctx context.Context, req NearbyRequest) ([]PlaceRecord, error) {
	return c.lookup(ctx, "nearby", req, func() ([]PlaceRecord, error) {
		return c.next.SearchNearby(ctx, req)
	})
}

func (c *CachedSearcher) SearchText(ctx context.Context, req TextRequest) ([]PlaceRecord, error) {
	return c.lookup(ctx, "text", req, func() ([]PlaceRecord, error) {
		return c.next.SearchText(ctx, req)
	})
}

func (c *CachedSearcher) lookup(ctx context.Context, kind string, req any, fetch func() ([]PlaceRecord, error)) ([]PlaceRecord, error) {
	key, err := cacheKey(kind, req)
	if err != nil {
		return fetch()
	}

	if payload, found, err := c.cache.Get(ctx, key); err != nil {
		slog.Warn("place cache read failed", "key", key, "error", err)
	} else if found {
		var records []PlaceRecord
		if err := json.Unmarshal(payload, &records); err == nil {
			metrics.CacheHits.WithLabelValues("places").Inc()
			return records, nil
		}
		slog.Warn("discarding corrupt place cache entry", "key", key)
	}
	metrics.CacheMisses.WithLabelValues("places").Inc()

	records, err := fetch()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(records)
	if err == nil {
		err = c.cache.Set(ctx, key, payload, c.ttl)
	}
	if err != nil {
		slog.Warn("place cache write failed", "key", key, "error", err)
	}
	return records, nil
}

func cacheKey(kind string, req any) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return kind + ":" + hex.EncodeToString(sum[:]), nil
}
