package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/bookmark-sync/internal/domain"
)

func setupCacheTest(t *testing.T) (*Tiers, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewTiers(NewSeedStore(), NewWarmStore(rdb, time.Minute)), mr
}

func sampleGroups() []domain.BookmarkGroup {
	return []domain.BookmarkGroup{
		{ID: "g1", GroupName: "Work", Bookmarks: []domain.BookmarkEntry{
			{ID: "b1", Name: "Docs", URL: "https://example.com/docs", CreatedAt: time.Now().UTC()},
			{ID: "b2", Name: "Tracker", URL: "https://tracker.example.com/", CreatedAt: time.Now().UTC()},
		}},
		{ID: "g2", GroupName: "Reading", Bookmarks: []domain.BookmarkEntry{
			{ID: "b3", Name: "Blog", URL: "https://blog.example.com/", CreatedAt: time.Now().UTC()},
		}},
	}
}

func TestSeedMissIsCleanNoData(t *testing.T) {
	tiers, _ := setupCacheTest(t)
	groups, ok := tiers.Seed("ws-unknown")
	assert.False(t, ok)
	assert.Nil(t, groups)
}

func TestRefreshPopulatesAllTiers(t *testing.T) {
	tiers, _ := setupCacheTest(t)
	ctx := context.Background()

	tiers.Refresh(ctx, "ws-1", sampleGroups())

	seeded, ok := tiers.Seed("ws-1")
	require.True(t, ok)
	assert.Len(t, seeded, 2)

	warm, ok := tiers.Warm(ctx, "ws-1")
	require.True(t, ok)
	assert.Len(t, warm, 2)
	assert.Equal(t, "Work", warm[0].GroupName)

	idx, ok := tiers.Index(ctx, "ws-1")
	require.True(t, ok)
	require.Len(t, idx, 2)
	assert.Equal(t, domain.GroupSummary{ID: "g1", GroupName: "Work", Count: 2}, idx[0])
}

func TestRefreshEmptyNeverClobbers(t *testing.T) {
	tiers, _ := setupCacheTest(t)
	ctx := context.Background()

	tiers.Refresh(ctx, "ws-1", sampleGroups())
	tiers.Refresh(ctx, "ws-1", nil)
	tiers.Refresh(ctx, "ws-1", []domain.BookmarkGroup{})

	seeded, ok := tiers.Seed("ws-1")
	require.True(t, ok)
	assert.Len(t, seeded, 2, "seed tier must keep the populated snapshot")

	warm, ok := tiers.Warm(ctx, "ws-1")
	require.True(t, ok)
	assert.Len(t, warm, 2, "warm tier must keep the populated snapshot")
}

func TestRefreshScopedToOneWorkspace(t *testing.T) {
	tiers, _ := setupCacheTest(t)
	ctx := context.Background()

	tiers.Refresh(ctx, "ws-1", sampleGroups())
	tiers.Refresh(ctx, "ws-2", sampleGroups()[:1])

	a, _ := tiers.Seed("ws-1")
	b, _ := tiers.Seed("ws-2")
	assert.Len(t, a, 2)
	assert.Len(t, b, 1)
}

func TestWarmExpires(t *testing.T) {
	tiers, mr := setupCacheTest(t)
	ctx := context.Background()

	tiers.Refresh(ctx, "ws-1", sampleGroups())
	mr.FastForward(2 * time.Minute)

	_, ok := tiers.Warm(ctx, "ws-1")
	assert.False(t, ok, "warm snapshot is session-scoped and expires")

	// The seed snapshot for this surface survives; it may be stale by
	// contract.
	_, ok = tiers.Seed("ws-1")
	assert.True(t, ok)
}

func TestWarmRedisDownDegradesToMiss(t *testing.T) {
	tiers, mr := setupCacheTest(t)
	ctx := context.Background()

	tiers.Refresh(ctx, "ws-1", sampleGroups())
	mr.Close()

	_, ok := tiers.Warm(ctx, "ws-1")
	assert.False(t, ok, "redis failure reads as a miss, not an error")

	// Writes with redis down are swallowed too.
	tiers.Refresh(ctx, "ws-1", sampleGroups()[:1])
	seeded, _ := tiers.Seed("ws-1")
	assert.Len(t, seeded, 1, "seed tier still refreshed")
}

func TestTiersWithoutRedis(t *testing.T) {
	tiers := NewTiers(NewSeedStore(), nil)
	ctx := context.Background()

	tiers.Refresh(ctx, "ws-1", sampleGroups())
	_, ok := tiers.Seed("ws-1")
	assert.True(t, ok)
	_, ok = tiers.Warm(ctx, "ws-1")
	assert.False(t, ok)
	idx, ok := tiers.Index(ctx, "ws-1")
	assert.True(t, ok)
	assert.Len(t, idx, 2)
}
