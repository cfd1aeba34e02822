package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/logger"
)

func newTestCache(t *testing.T) (*SnapshotCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, time.Minute, logger.NewNop(), nil), mr
}

func testSnapshot(t *testing.T) *domain.StatsSnapshot {
	t.Helper()
	f, err := domain.NewFilterContext(domain.FilterParams{
		StartDate: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.August, 14, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return &domain.StatsSnapshot{
		Filter:     f,
		AnchorDate: time.Date(2025, time.August, 14, 0, 0, 0, 0, time.UTC),
		Overall:    domain.PeriodTotals{TotalIncome: 1500, TotalReports: 2},
	}
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	_, ok := c.Get(ctx, snap.Filter, snap.AnchorDate)
	assert.False(t, ok, "empty cache must miss")

	c.Put(ctx, snap)

	got, ok := c.Get(ctx, snap.Filter, snap.AnchorDate)
	require.True(t, ok)
	assert.InDelta(t, 1500, got.Overall.TotalIncome, 1e-9)
	assert.Equal(t, 2, got.Overall.TotalReports)
}

func TestSnapshotCache_KeyedByAnchorDay(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	c.Put(ctx, snap)

	// Same filter, next day: preset windows have moved, so no hit.
	nextDay := snap.AnchorDate.AddDate(0, 0, 1)
	_, ok := c.Get(ctx, snap.Filter, nextDay)
	assert.False(t, ok)
}

func TestSnapshotCache_DegradedNeverCached(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	snap := testSnapshot(t)
	snap.Diagnostics = []string{"this_year: query timeout"}

	c.Put(ctx, snap)

	_, ok := c.Get(ctx, snap.Filter, snap.AnchorDate)
	assert.False(t, ok, "degraded snapshots must not be pinned for the TTL")
}

func TestSnapshotCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	c.Put(ctx, snap)
	mr.FastForward(2 * time.Minute)

	_, ok := c.Get(ctx, snap.Filter, snap.AnchorDate)
	assert.False(t, ok)
}

func TestSnapshotCache_RedisDownIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	mr.Close()

	_, ok := c.Get(ctx, snap.Filter, snap.AnchorDate)
	assert.False(t, ok, "cache failure degrades to recompute, never errors")

	// Put against a dead server must not panic either.
	c.Put(ctx, snap)
}

func TestSnapshotCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	snap := testSnapshot(t)

	c.Put(ctx, snap)

	// Overwrite the stored entry with garbage.
	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.NoError(t, mr.Set(keys[0], "{not json"))

	_, ok := c.Get(ctx, snap.Filter, snap.AnchorDate)
	assert.False(t, ok)
}
