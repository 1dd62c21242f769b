package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// Seed and warm keys are namespaced by workspace id alone; only the
// durable store adds the user id (see repository/postgres).
func warmKey(workspaceID string) string  { return fmt.Sprintf("WS_%s__warm", workspaceID) }
func indexKey(workspaceID string) string { return fmt.Sprintf("WS_%s__index", workspaceID) }

// DefaultWarmTTL bounds how long a warm snapshot outlives its write.
// It is session-scoped, not durable; the durable store is the source of
// truth and re-populates the tier on the next successful write.
const DefaultWarmTTL = 30 * time.Minute

// WarmStore is the tier-1b snapshot held in Redis.
type WarmStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewWarmStore creates a warm store. A zero ttl selects DefaultWarmTTL.
func NewWarmStore(rdb *redis.Client, ttl time.Duration) *WarmStore {
	if ttl <= 0 {
		ttl = DefaultWarmTTL
	}
	return &WarmStore{rdb: rdb, ttl: ttl}
}

// Get returns the warm snapshot for a workspace. ok is false on a miss
// or when the cached payload can't be decoded; either way the caller
// falls through to the durable store.
func (w *WarmStore) Get(ctx context.Context, workspaceID string) ([]domain.BookmarkGroup, bool, error) {
	raw, err := w.rdb.Get(ctx, warmKey(workspaceID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("warm cache get %s: %w", workspaceID, err)
	}
	var groups []domain.BookmarkGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, false, fmt.Errorf("warm cache decode %s: %w", workspaceID, err)
	}
	return groups, true, nil
}

// Index returns the cached groups index for a workspace.
func (w *WarmStore) Index(ctx context.Context, workspaceID string) ([]domain.GroupSummary, bool, error) {
	raw, err := w.rdb.Get(ctx, indexKey(workspaceID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("index cache get %s: %w", workspaceID, err)
	}
	var idx []domain.GroupSummary
	if err := json.Unmarshal(raw, &idx); err != nil {
		return nil, false, fmt.Errorf("index cache decode %s: %w", workspaceID, err)
	}
	return idx, true, nil
}

// Set replaces the warm snapshot and groups index for one workspace.
func (w *WarmStore) Set(ctx context.Context, workspaceID string, groups []domain.BookmarkGroup) error {
	payload, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("warm cache encode %s: %w", workspaceID, err)
	}
	if err := w.rdb.Set(ctx, warmKey(workspaceID), payload, w.ttl).Err(); err != nil {
		return fmt.Errorf("warm cache set %s: %w", workspaceID, err)
	}
	idx, err := json.Marshal(Summarize(groups))
	if err != nil {
		return fmt.Errorf("index cache encode %s: %w", workspaceID, err)
	}
	if err := w.rdb.Set(ctx, indexKey(workspaceID), idx, w.ttl).Err(); err != nil {
		return fmt.Errorf("index cache set %s: %w", workspaceID, err)
	}
	return nil
}
