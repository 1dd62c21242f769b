package cache

import (
	"sync"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// SeedStore is the tier-1a snapshot: synchronous, in-process, keyed by
// workspace id. Surfaces read it on first paint before any asynchronous
// work resolves, so reads never block and a miss is an explicit ok=false.
type SeedStore struct {
	mu    sync.RWMutex
	byWS  map[string][]domain.BookmarkGroup
	index map[string][]domain.GroupSummary
}

// NewSeedStore creates an empty seed snapshot store.
func NewSeedStore() *SeedStore {
	return &SeedStore{
		byWS:  make(map[string][]domain.BookmarkGroup),
		index: make(map[string][]domain.GroupSummary),
	}
}

// Get returns the seeded groups for a workspace. ok is false when no
// snapshot exists yet; callers treat that as "no data", not an error.
func (s *SeedStore) Get(workspaceID string) ([]domain.BookmarkGroup, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups, ok := s.byWS[workspaceID]
	return groups, ok
}

// Index returns the cached groups index for a workspace.
func (s *SeedStore) Index(workspaceID string) ([]domain.GroupSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.index[workspaceID]
	return idx, ok
}

// Set replaces the snapshot for one workspace. Callers must have applied
// the non-empty rule already; Set itself overwrites unconditionally so
// the write path stays in one place.
func (s *SeedStore) Set(workspaceID string, groups []domain.BookmarkGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byWS[workspaceID] = groups
	s.index[workspaceID] = Summarize(groups)
}

// Summarize reduces full groups to their index form: id, display name and
// bookmark count, no payload.
func Summarize(groups []domain.BookmarkGroup) []domain.GroupSummary {
	out := make([]domain.GroupSummary, 0, len(groups))
	for _, g := range groups {
		out = append(out, domain.GroupSummary{
			ID:        g.ID,
			GroupName: g.GroupName,
			Count:     len(g.Bookmarks),
		})
	}
	return out
}
