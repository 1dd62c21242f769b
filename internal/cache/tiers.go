package cache

import (
	"context"
	"log"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// Tiers is the single write path over the fast cache planes. Every
// successful durable write flows through Refresh; nothing else writes
// the seed or warm tiers.
type Tiers struct {
	seed *SeedStore
	warm *WarmStore
}

// NewTiers combines the seed and warm stores. warm may be nil when Redis
// is not configured; the seed tier still works alone.
func NewTiers(seed *SeedStore, warm *WarmStore) *Tiers {
	return &Tiers{seed: seed, warm: warm}
}

// Refresh pushes a freshly persisted group set into the fast tiers.
//
// The anti-clobber rule lives here: an empty set is a no-op, so a failed
// or empty import can never blank out caches that a previous run
// populated. Tier failures are logged and swallowed; the durable write
// already succeeded and the import must not fail over a lost cache.
func (t *Tiers) Refresh(ctx context.Context, workspaceID string, groups []domain.BookmarkGroup) {
	if len(groups) == 0 {
		return
	}
	t.seed.Set(workspaceID, groups)
	if t.warm != nil {
		if err := t.warm.Set(ctx, workspaceID, groups); err != nil {
			log.Printf("[cache] warm refresh failed for workspace %s: %v", workspaceID, err)
		}
	}
}

// Seed reads the synchronous tier-1a snapshot.
func (t *Tiers) Seed(workspaceID string) ([]domain.BookmarkGroup, bool) {
	return t.seed.Get(workspaceID)
}

// Warm reads the tier-1b snapshot. Redis errors are treated as a miss;
// the caller falls through to the durable store either way.
func (t *Tiers) Warm(ctx context.Context, workspaceID string) ([]domain.BookmarkGroup, bool) {
	if t.warm == nil {
		return nil, false
	}
	groups, ok, err := t.warm.Get(ctx, workspaceID)
	if err != nil {
		log.Printf("[cache] warm read failed for workspace %s: %v", workspaceID, err)
		return nil, false
	}
	return groups, ok
}

// Index reads the groups index, preferring the seed tier, then warm.
func (t *Tiers) Index(ctx context.Context, workspaceID string) ([]domain.GroupSummary, bool) {
	if idx, ok := t.seed.Index(workspaceID); ok {
		return idx, true
	}
	if t.warm == nil {
		return nil, false
	}
	idx, ok, err := t.warm.Index(ctx, workspaceID)
	if err != nil {
		log.Printf("[cache] index read failed for workspace %s: %v", workspaceID, err)
		return nil, false
	}
	return idx, ok
}
