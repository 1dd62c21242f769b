package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/workspace"
)

func setupRepoTest(t *testing.T) (*WorkspaceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewWorkspaceRepo(db), mock
}

func TestStoreKeyFormat(t *testing.T) {
	assert.Equal(t, "WS_ws-1__groups_user-9", StoreKey("ws-1", "groups", "user-9"))
}

func TestGetWorkspaceNotFound(t *testing.T) {
	repo, mock := setupRepoTest(t)
	mock.ExpectQuery("SELECT id, user_id, purpose, name, created_at").
		WithArgs("ws-1", "user-1").
		WillReturnError(errorNoRows())

	_, err := repo.GetWorkspace(context.Background(), "user-1", "ws-1")
	assert.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestGetWorkspace(t *testing.T) {
	repo, mock := setupRepoTest(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, user_id, purpose, name, created_at").
		WithArgs("ws-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "purpose", "name", "created_at"}).
			AddRow("ws-1", "user-1", "work", "Work Workspace", now))

	rec, err := repo.GetWorkspace(context.Background(), "user-1", "ws-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PurposeWork, rec.Purpose)
	assert.Equal(t, "Work Workspace", rec.Name)
}

func TestLoadGroupsMissingKeyIsEmpty(t *testing.T) {
	repo, mock := setupRepoTest(t)
	mock.ExpectQuery("SELECT value FROM workspace_store").
		WithArgs("WS_ws-1__groups_user-1").
		WillReturnError(errorNoRows())

	groups, err := repo.LoadGroups(context.Background(), "user-1", "ws-1")
	require.NoError(t, err)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestLoadGroupsRoundTrip(t *testing.T) {
	repo, mock := setupRepoTest(t)
	stored := []domain.BookmarkGroup{
		{ID: "g1", GroupName: "Work", Bookmarks: []domain.BookmarkEntry{
			{ID: "b1", Name: "Docs", URL: "https://example.com/docs", CreatedAt: time.Now().UTC().Truncate(time.Second)},
		}},
	}
	payload, _ := json.Marshal(stored)
	mock.ExpectQuery("SELECT value FROM workspace_store").
		WithArgs("WS_ws-1__groups_user-1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(payload))

	groups, err := repo.LoadGroups(context.Background(), "user-1", "ws-1")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "b1", groups[0].Bookmarks[0].ID, "persisted ids are stable across round-trips")
}

func TestSaveGroupsUpserts(t *testing.T) {
	repo, mock := setupRepoTest(t)
	mock.ExpectExec("INSERT INTO workspace_store").
		WithArgs("WS_ws-1__groups_user-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveGroups(context.Background(), "user-1", "ws-1", []domain.BookmarkGroup{
		{ID: "g1", GroupName: "Work"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveGroupsDBErrorSurfaces(t *testing.T) {
	repo, mock := setupRepoTest(t)
	mock.ExpectExec("INSERT INTO workspace_store").
		WillReturnError(errors.New("quota exceeded"))

	err := repo.SaveGroups(context.Background(), "user-1", "ws-1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save groups")
}

func TestListWorkspaces(t *testing.T) {
	repo, mock := setupRepoTest(t)
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, user_id, purpose, name, created_at").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "purpose", "name", "created_at"}).
			AddRow("ws-1", "user-1", "work", "Work Workspace", now).
			AddRow("ws-2", "user-1", "school", "School Workspace", now))

	recs, err := repo.ListWorkspaces(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.PurposeSchool, recs[1].Purpose)
}

func errorNoRows() error { return sql.ErrNoRows }
