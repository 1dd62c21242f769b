package collector

import (
	"context"
	"strings"

	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/urlnorm"
)

// StructureOptions controls the preserve-structure collection strategy.
type StructureOptions struct {
	// MaxDepth bounds folder recursion; traversal stops silently beyond
	// it. Zero means the default of 8.
	MaxDepth int

	// OnlyLeafFolders, when set, suppresses groups for folders that hold
	// both bookmarks and sub-folders; only pure leaf folders emit.
	OnlyLeafFolders bool

	// MinItemsPerFolder drops folders whose post-dedup item count falls
	// below the threshold.
	MinItemsPerFolder int

	// IncludeRootFolders makes synthetic root containers (for example a
	// browser's "Bookmarks Bar") contribute to the group display name of
	// the folders nested inside them.
	IncludeRootFolders bool
}

const defaultMaxDepth = 8

func (o StructureOptions) maxDepth() int {
	if o.MaxDepth <= 0 {
		return defaultMaxDepth
	}
	return o.MaxDepth
}

// PreserveStructure emits one group per folder in the bookmark tree,
// keeping the folder hierarchy visible in the group names. Deduplication
// is scoped per folder: the same URL may legitimately live in two
// different folders and both occurrences are kept.
func PreserveStructure(ctx context.Context, src SourceProvider, opts StructureOptions) ([]Group, error) {
	root, err := src.BookmarkTree(ctx)
	if err != nil {
		return nil, err
	}
	groups := []Group{}
	if root == nil {
		return groups, nil
	}

	// The immediate children of the root are synthetic containers
	// supplied by the host ("Bookmarks Bar", "Other Bookmarks"), not
	// folders the user made.
	for _, top := range root.Children {
		if !top.IsFolder() {
			continue
		}
		collectFolder(top, nil, 1, true, opts, &groups)
	}
	return groups, nil
}

// collectFolder emits a group for the folder's direct bookmarks when the
// policy allows it, then recurses into sub-folders. path holds the
// display names of the ancestors that should appear in group names.
func collectFolder(n *Node, path []string, depth int, syntheticRoot bool, opts StructureOptions, out *[]Group) {
	if depth > opts.maxDepth() {
		return
	}

	var direct []*Node
	var subfolders []*Node
	for _, c := range n.Children {
		if c.IsFolder() {
			subfolders = append(subfolders, c)
		} else {
			direct = append(direct, c)
		}
	}

	emit := len(direct) > 0
	if opts.OnlyLeafFolders && len(subfolders) > 0 {
		emit = false
	}
	if emit {
		group := buildGroup(joinPath(path, n), direct)
		if len(group.Items) > 0 && len(group.Items) >= opts.MinItemsPerFolder {
			*out = append(*out, group)
		}
	}

	childPath := append(append([]string{}, path...), displayName(n))
	if syntheticRoot && !opts.IncludeRootFolders {
		childPath = path
	}
	for _, sub := range subfolders {
		collectFolder(sub, childPath, depth+1, false, opts, out)
	}
}

func joinPath(path []string, n *Node) string {
	parts := append(append([]string{}, path...), displayName(n))
	return strings.Join(parts, " / ")
}

func displayName(n *Node) string {
	t := strings.TrimSpace(n.Title)
	if t == "" {
		return "Untitled"
	}
	return t
}

// buildGroup converts a folder's direct bookmark leaves into a group,
// dropping non-web URLs and deduplicating within the folder only.
func buildGroup(name string, leaves []*Node) Group {
	items := make([]domain.RawItem, 0, len(leaves))
	for _, l := range leaves {
		if !urlnorm.IsHTTPURL(l.URL) {
			continue
		}
		items = append(items, leafItem(l))
	}
	return Group{Name: name, Items: dedupByCanonicalURL(items)}
}
