package domain

import (
	"strings"
	"time"
)

// ItemSource identifies which browser surface a raw item came from.
type ItemSource string

const (
	SourceBookmarks ItemSource = "bookmarks"
	SourceTabs      ItemSource = "tabs"
	SourceHistory   ItemSource = "history"
)

// RawItem is a single browsing artifact as produced by a source collector.
// It is immutable once created and scoped to one import run. The ID is
// collector-assigned and not guaranteed globally unique across sources.
type RawItem struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	URL           string     `json:"url"`
	Source        ItemSource `json:"source"`
	LastVisitedAt *time.Time `json:"last_visited_at,omitempty"`
}

// CategorizedGroup is a named set of items produced by the categorization
// service. Items are references to RawItems, never independent copies.
// Purpose must be one of the purposes passed into the request.
type CategorizedGroup struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Purpose     Purpose   `json:"purpose"`
	Description string    `json:"description,omitempty"`
	Items       []RawItem `json:"items"`
}

// BookmarkEntry is the persisted form of a RawItem inside a workspace.
// Its ID is stable across persistence round-trips.
type BookmarkEntry struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	URL       string    `json:"url" db:"url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// BookmarkGroup is the persisted form of a CategorizedGroup. A group is
// owned by exactly one workspace; the workspace owns zero or more groups.
type BookmarkGroup struct {
	ID        string          `json:"id" db:"id"`
	GroupName string          `json:"group_name" db:"group_name"`
	Bookmarks []BookmarkEntry `json:"bookmarks"`
}

// GroupSummary is the index entry for a group: id and display name only,
// for list-rendering surfaces that don't need the bookmark payload.
type GroupSummary struct {
	ID        string `json:"id"`
	GroupName string `json:"group_name"`
	Count     int    `json:"count"`
}

// WorkspaceRef identifies a durable workspace. One workspace is created
// per purpose per import run; its ID is the join key for all cache tiers.
type WorkspaceRef struct {
	ID      string  `json:"id"`
	Purpose Purpose `json:"purpose"`
}

// Purpose is a user-selected tag describing the intended use of a
// workspace. The known values get friendly display names; unknown values
// are carried through verbatim.
type Purpose string

const (
	PurposeWork     Purpose = "work"
	PurposeSchool   Purpose = "school"
	PurposePersonal Purpose = "personal"
)

// Title returns the display form of the purpose: known values are
// title-cased, unrecognized values pass through verbatim.
func (p Purpose) Title() string {
	switch p {
	case PurposeWork:
		return "Work"
	case PurposeSchool:
		return "School"
	case PurposePersonal:
		return "Personal"
	}
	return string(p)
}

// WorkspaceName returns the friendly default workspace name for a purpose.
func (p Purpose) WorkspaceName() string {
	switch p {
	case PurposeWork:
		return "Work Workspace"
	case PurposeSchool:
		return "School Workspace"
	case PurposePersonal:
		return "Personal Workspace"
	}
	return strings.TrimSpace(string(p))
}
