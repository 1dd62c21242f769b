// Package collector reads raw bookmark, tab, and history entries from a
// host-provided source and converts them into the pipeline's uniform item
// shape. The host surface is behind the SourceProvider interface so tests
// and the HTTP ingestion path can supply in-memory trees.
package collector

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/urlnorm"
)

// Node is one entry in the host's bookmark tree. A node with a URL is a
// bookmark leaf; a node without one is a folder. The tree is read-only;
// the collector never mutates host state.
type Node struct {
	ID       string
	Title    string
	URL      string
	Children []*Node
}

// IsFolder reports whether the node is a folder rather than a bookmark.
func (n *Node) IsFolder() bool { return n.URL == "" }

// SourceProvider supplies the raw browsing artifacts for one import run.
type SourceProvider interface {
	// BookmarkTree returns the root of the bookmark tree, or nil when the
	// source has no bookmarks. The returned tree must not be mutated.
	BookmarkTree(ctx context.Context) (*Node, error)

	// OpenTabs returns the currently open tabs as raw items.
	OpenTabs(ctx context.Context) ([]domain.RawItem, error)

	// History returns recent history entries as raw items.
	History(ctx context.Context) ([]domain.RawItem, error)
}

// Group is a named set of collected items, produced by the
// preserve-structure strategy (one group per folder) or by flatten
// (a single synthetic group).
type Group struct {
	Name  string
	Items []domain.RawItem
}

// Flatten walks every leaf of the bookmark tree plus the flat tab and
// history lists, drops non-web URLs, and deduplicates globally by
// canonical URL across the whole run. First occurrence wins.
func Flatten(ctx context.Context, src SourceProvider) ([]domain.RawItem, error) {
	var items []domain.RawItem

	root, err := src.BookmarkTree(ctx)
	if err != nil {
		return nil, err
	}
	if root != nil {
		walkLeaves(root, func(n *Node) {
			items = append(items, leafItem(n))
		})
	}

	tabs, err := src.OpenTabs(ctx)
	if err != nil {
		return nil, err
	}
	items = append(items, tabs...)

	history, err := src.History(ctx)
	if err != nil {
		return nil, err
	}
	items = append(items, history...)

	return dedupByCanonicalURL(items), nil
}

// Run collects with the given strategy and always invokes persist with
// the resulting groups, even when nothing was collected, so the caller
// can react to "nothing imported".
func Run(ctx context.Context, src SourceProvider, opts StructureOptions, flatten bool, persist func([]Group) error) error {
	var groups []Group
	if flatten {
		items, err := Flatten(ctx, src)
		if err != nil {
			return err
		}
		if len(items) > 0 {
			groups = []Group{{Name: "Imported", Items: items}}
		}
	} else {
		var err error
		groups, err = PreserveStructure(ctx, src, opts)
		if err != nil {
			return err
		}
	}
	if groups == nil {
		groups = []Group{}
	}
	return persist(groups)
}

func walkLeaves(n *Node, visit func(*Node)) {
	if !n.IsFolder() {
		if urlnorm.IsHTTPURL(n.URL) {
			visit(n)
		}
		return
	}
	for _, c := range n.Children {
		walkLeaves(c, visit)
	}
}

func leafItem(n *Node) domain.RawItem {
	id := n.ID
	if id == "" {
		id = uuid.New().String()
	}
	name := strings.TrimSpace(n.Title)
	if name == "" {
		name = n.URL
	}
	return domain.RawItem{
		ID:     id,
		Name:   name,
		URL:    n.URL,
		Source: domain.SourceBookmarks,
	}
}

// dedupByCanonicalURL keeps the first item seen for each canonical URL,
// preserving input order, and drops items whose URL is not http(s).
func dedupByCanonicalURL(items []domain.RawItem) []domain.RawItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]domain.RawItem, 0, len(items))
	for _, it := range items {
		if !urlnorm.IsHTTPURL(it.URL) {
			continue
		}
		key := urlnorm.Normalize(it.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
