package workspace

import (
	"context"
	"time"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// Record is a durable workspace row.
type Record struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Purpose   domain.Purpose `json:"purpose"`
	Name      string         `json:"name"`
	CreatedAt time.Time      `json:"created_at"`
}

// Repository defines the durable-store contract for workspaces and their
// groups. Implementations must be safe for concurrent use.
//
// Unlike the cache tiers, durable writes DO surface their errors: the
// registry's caller must be able to tell "save failed" apart from
// "saved zero groups".
type Repository interface {
	// CreateWorkspace inserts a new workspace row.
	CreateWorkspace(ctx context.Context, rec Record) error

	// GetWorkspace returns one workspace. Returns ErrNotFound if it
	// doesn't exist or belongs to another user.
	GetWorkspace(ctx context.Context, userID, workspaceID string) (Record, error)

	// ListWorkspaces returns the user's workspaces, oldest first.
	ListWorkspaces(ctx context.Context, userID string) ([]Record, error)

	// LoadGroups returns the full groups array for one workspace. A
	// workspace with no persisted groups yields an empty slice.
	LoadGroups(ctx context.Context, userID, workspaceID string) ([]domain.BookmarkGroup, error)

	// SaveGroups overwrites the full groups array for one workspace,
	// without touching other workspaces or their caches.
	SaveGroups(ctx context.Context, userID, workspaceID string, groups []domain.BookmarkGroup) error
}
