package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/bookmark-sync/internal/cache"
	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/urlnorm"
)

// Registry creates workspaces and writes bookmark groups through the
// durable store and cache tiers.
type Registry struct {
	repo  Repository
	tiers *cache.Tiers
	now   func() time.Time
}

// NewRegistry creates a workspace registry.
func NewRegistry(repo Repository, tiers *cache.Tiers) *Registry {
	return &Registry{repo: repo, tiers: tiers, now: time.Now}
}

// CreateWorkspaceForPurpose creates a durable workspace named after the
// purpose: friendly default names for the known purposes, the raw tag
// otherwise.
func (r *Registry) CreateWorkspaceForPurpose(ctx context.Context, userID string, purpose domain.Purpose) (domain.WorkspaceRef, error) {
	if strings.TrimSpace(string(purpose)) == "" {
		return domain.WorkspaceRef{}, ErrEmptyPurpose
	}
	rec := Record{
		ID:        uuid.New().String(),
		UserID:    userID,
		Purpose:   purpose,
		Name:      purpose.WorkspaceName(),
		CreatedAt: r.now().UTC(),
	}
	if err := r.repo.CreateWorkspace(ctx, rec); err != nil {
		return domain.WorkspaceRef{}, fmt.Errorf("create workspace: %w", err)
	}
	return domain.WorkspaceRef{ID: rec.ID, Purpose: purpose}, nil
}

// SaveGroupsToWorkspace maps the categorized groups into persisted form
// and overwrites the workspace's full group set. An empty input is a
// no-op: it never erases anything already persisted.
//
// Durable-store errors are returned to the caller; cache-tier refreshes
// are best-effort and never fail the save.
func (r *Registry) SaveGroupsToWorkspace(ctx context.Context, userID, workspaceID string, groups []domain.CategorizedGroup) error {
	if len(groups) == 0 {
		return nil
	}
	if _, err := r.repo.GetWorkspace(ctx, userID, workspaceID); err != nil {
		return err
	}
	mapped := r.mapGroups(groups)
	if len(mapped) == 0 {
		return nil
	}
	if err := r.repo.SaveGroups(ctx, userID, workspaceID, mapped); err != nil {
		return fmt.Errorf("save groups: %w", err)
	}
	r.tiers.Refresh(ctx, workspaceID, mapped)
	return nil
}

// AppendGroupsToWorkspace merges new groups into the workspace without
// deleting the ones already persisted.
func (r *Registry) AppendGroupsToWorkspace(ctx context.Context, userID, workspaceID string, groups []domain.CategorizedGroup) error {
	if len(groups) == 0 {
		return nil
	}
	if _, err := r.repo.GetWorkspace(ctx, userID, workspaceID); err != nil {
		return err
	}
	mapped := r.mapGroups(groups)
	if len(mapped) == 0 {
		return nil
	}
	existing, err := r.repo.LoadGroups(ctx, userID, workspaceID)
	if err != nil {
		return fmt.Errorf("load groups: %w", err)
	}
	combined := append(existing, mapped...)
	if err := r.repo.SaveGroups(ctx, userID, workspaceID, combined); err != nil {
		return fmt.Errorf("append groups: %w", err)
	}
	r.tiers.Refresh(ctx, workspaceID, combined)
	return nil
}

// Groups returns the authoritative group set for a workspace from the
// durable store, re-warming the fast tiers as a side effect.
func (r *Registry) Groups(ctx context.Context, userID, workspaceID string) ([]domain.BookmarkGroup, error) {
	if _, err := r.repo.GetWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	groups, err := r.repo.LoadGroups(ctx, userID, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	r.tiers.Refresh(ctx, workspaceID, groups)
	return groups, nil
}

// GroupsIndex returns the lightweight id/name index for a workspace,
// answering from the cache tiers when possible.
func (r *Registry) GroupsIndex(ctx context.Context, userID, workspaceID string) ([]domain.GroupSummary, error) {
	if idx, ok := r.tiers.Index(ctx, workspaceID); ok {
		return idx, nil
	}
	groups, err := r.Groups(ctx, userID, workspaceID)
	if err != nil {
		return nil, err
	}
	return cache.Summarize(groups), nil
}

// ListWorkspaces returns the user's workspaces.
func (r *Registry) ListWorkspaces(ctx context.Context, userID string) ([]Record, error) {
	return r.repo.ListWorkspaces(ctx, userID)
}

// mapGroups converts transient categorized groups into persisted form:
// persisted ids are assigned, CreatedAt comes from the item's last visit
// when known, and canonical-URL duplicates across the whole payload are
// collapsed so one write never persists the same address twice. Items
// the categorizer invented (unknown ids, missing URLs) are tolerated by
// dropping what can't be persisted rather than failing the write.
func (r *Registry) mapGroups(groups []domain.CategorizedGroup) []domain.BookmarkGroup {
	now := r.now().UTC()
	seen := make(map[string]struct{})
	out := make([]domain.BookmarkGroup, 0, len(groups))
	for _, g := range groups {
		entries := make([]domain.BookmarkEntry, 0, len(g.Items))
		for _, it := range g.Items {
			if strings.TrimSpace(it.URL) == "" {
				continue
			}
			key := urlnorm.Normalize(it.URL)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			createdAt := now
			if it.LastVisitedAt != nil {
				createdAt = it.LastVisitedAt.UTC()
			}
			entries = append(entries, domain.BookmarkEntry{
				ID:        uuid.New().String(),
				Name:      it.Name,
				URL:       it.URL,
				CreatedAt: createdAt,
			})
		}
		if len(entries) == 0 {
			continue
		}
		out = append(out, domain.BookmarkGroup{
			ID:        uuid.New().String(),
			GroupName: g.Name,
			Bookmarks: entries,
		})
	}
	return out
}
