package places

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-trip-planner/internal/sqlite"
)

type countingSearcher struct {
	nearbyCalls int
	textCalls   int
	records     []PlaceRecord
	err         error
}

func (c *countingSearcher) SearchNearby(ctx context.Context, req NearbyRequest) ([]PlaceRecord, error) {
	c.nearbyCalls++
	return c.records, c.err
}

func (c *countingSearcher) SearchText(ctx context.Context, req TextRequest) ([]PlaceRecord, error) {
	c.textCalls++
	return c.records, c.err
}

func newTestCache(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCachedSearcher(t *testing.T) {
	ctx := context.Background()
	store := newTestCache(t)
	next := &countingSearcher{records: []PlaceRecord{
		{ID: "h1", Name: "Drury Plaza Hotel", Rating: 4.6, ReviewCount: 2100, OpeningHours: &OpeningHours{WeekdayDescriptions: []string{"Monday: Open 24 hours"}}},
	}}
	cached := NewCachedSearcher(next, store.PlaceCache(), time.Hour)

	first, err := cached.SearchNearby(ctx, HotelPolicy.Nearby(nashville))
	require.NoError(t, err)
	second, err := cached.SearchNearby(ctx, HotelPolicy.Nearby(nashville))
	require.NoError(t, err)

	assert.Equal(t, 1, next.nearbyCalls)
	assert.Equal(t, first, second)

	_, err = cached.SearchNearby(ctx, VetPolicy.Nearby(nashville))
	require.NoError(t, err)
	assert.Equal(t, 2, next.nearbyCalls, "different request is a different key")

	_, err = cached.SearchText(ctx, DogParkPolicy.Text("Nashville, TN", nashville))
	require.NoError(t, err)
	_, err = cached.SearchText(ctx, DogParkPolicy.Text("Nashville, TN", nashville))
	require.NoError(t, err)
	assert.Equal(t, 1, next.textCalls)
}

func TestCachedSearcherDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	next := &countingSearcher{err: errors.New("quota exceeded")}
	cached := NewCachedSearcher(next, newTestCache(t).PlaceCache(), 0)

	_, err := cached.SearchText(ctx, RestaurantPolicy.Text("Chicago, IL", nashville))
	require.Error(t, err)

	next.err = nil
	_, err = cached.SearchText(ctx, RestaurantPolicy.Text("Chicago, IL", nashville))
	require.NoError(t, err)
	assert.Equal(t, 2, next.textCalls)
}

func TestCacheKey(t *testing.T) {
	a, err := cacheKey("nearby", HotelPolicy.Nearby(nashville))
	require.NoError(t, err)
	b, err := cacheKey("nearby", HotelPolicy.Nearby(nashville))
	require.NoError(t, err)
	c, err := cacheKey("text", HotelPolicy.Nearby(nashville))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "nearby:")
}
