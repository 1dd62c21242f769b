package collector

import (
	"context"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// InMemorySource is a SourceProvider backed by values held in memory.
// The HTTP ingestion path adapts a browser export payload into one of
// these; tests use it directly.
type InMemorySource struct {
	Tree    *Node
	Tabs    []domain.RawItem
	Entries []domain.RawItem
}

// BookmarkTree returns the in-memory tree as-is.
func (s *InMemorySource) BookmarkTree(context.Context) (*Node, error) { return s.Tree, nil }

// OpenTabs returns the in-memory tab list.
func (s *InMemorySource) OpenTabs(context.Context) ([]domain.RawItem, error) { return s.Tabs, nil }

// History returns the in-memory history list.
func (s *InMemorySource) History(context.Context) ([]domain.RawItem, error) { return s.Entries, nil }
