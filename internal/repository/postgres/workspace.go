// Package postgres implements the workspace durable store against
// PostgreSQL. Workspace metadata lives in a relational table; the full
// groups array for each workspace is stored as a single JSONB value
// under a namespaced key, mirroring the extension's storage layout.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/workspace"
)

// WorkspaceRepo implements workspace.Repository against PostgreSQL.
type WorkspaceRepo struct{ db *sql.DB }

// NewWorkspaceRepo creates a Postgres-backed workspace repository.
func NewWorkspaceRepo(db *sql.DB) *WorkspaceRepo { return &WorkspaceRepo{db: db} }

// StoreKey builds the durable key for one workspace payload, namespaced
// by workspace and user so accounts can never read each other's data.
func StoreKey(workspaceID, logicalKey, userID string) string {
	return fmt.Sprintf("WS_%s__%s_%s", workspaceID, logicalKey, userID)
}

const groupsKey = "groups"

// EnsureSchema creates the tables this repository needs.
func (r *WorkspaceRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS workspaces (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			purpose    TEXT NOT NULL,
			name       TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS workspaces_user_idx ON workspaces (user_id, created_at);
		CREATE TABLE IF NOT EXISTS workspace_store (
			store_key  TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func (r *WorkspaceRepo) CreateWorkspace(ctx context.Context, rec workspace.Record) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO workspaces (id, user_id, purpose, name, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, rec.ID, rec.UserID, string(rec.Purpose), rec.Name, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert workspace: %w", err)
	}
	return nil
}

func (r *WorkspaceRepo) GetWorkspace(ctx context.Context, userID, workspaceID string) (workspace.Record, error) {
	var rec workspace.Record
	var purpose string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, purpose, name, created_at
		FROM workspaces
		WHERE id = $1 AND user_id = $2
	`, workspaceID, userID).Scan(&rec.ID, &rec.UserID, &purpose, &rec.Name, &rec.CreatedAt)
	if err == sql.ErrNoRows {
		return workspace.Record{}, workspace.ErrNotFound
	}
	if err != nil {
		return workspace.Record{}, fmt.Errorf("get workspace: %w", err)
	}
	rec.Purpose = domain.Purpose(purpose)
	return rec, nil
}

func (r *WorkspaceRepo) ListWorkspaces(ctx context.Context, userID string) ([]workspace.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, purpose, name, created_at
		FROM workspaces
		WHERE user_id = $1
		ORDER BY created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	defer rows.Close()

	var out []workspace.Record
	for rows.Next() {
		var rec workspace.Record
		var purpose string
		if err := rows.Scan(&rec.ID, &rec.UserID, &purpose, &rec.Name, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workspace: %w", err)
		}
		rec.Purpose = domain.Purpose(purpose)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *WorkspaceRepo) LoadGroups(ctx context.Context, userID, workspaceID string) ([]domain.BookmarkGroup, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM workspace_store WHERE store_key = $1
	`, StoreKey(workspaceID, groupsKey, userID)).Scan(&raw)
	if err == sql.ErrNoRows {
		return []domain.BookmarkGroup{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load groups: %w", err)
	}
	var groups []domain.BookmarkGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return groups, nil
}

func (r *WorkspaceRepo) SaveGroups(ctx context.Context, userID, workspaceID string, groups []domain.BookmarkGroup) error {
	payload, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("encode groups: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO workspace_store (store_key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_key) DO UPDATE SET value = $2, updated_at = $3
	`, StoreKey(workspaceID, groupsKey, userID), payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save groups: %w", err)
	}
	return nil
}
