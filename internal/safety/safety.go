// Package safety decides whether collected items are acceptable for
// import. The baseline implementation is a local blocklist; the interface
// is context-aware so a remote classifier can slot in later.
package safety

import (
	"context"
	"strings"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// Filter accepts or rejects a single item. Implementations must be free
// of side effects; a rejected item is simply dropped from the run.
type Filter interface {
	// IsSafe reports whether the item may be imported. The decision is
	// binary; there is no partial scoring.
	IsSafe(ctx context.Context, item domain.RawItem) (bool, error)
}

// BlocklistFilter rejects items whose URL or display name contains any
// blocklisted term, case-insensitively. It performs no network calls.
type BlocklistFilter struct {
	terms []string
}

// NewBlocklistFilter builds a filter from the given terms. Empty and
// whitespace-only terms are ignored.
func NewBlocklistFilter(terms []string) *BlocklistFilter {
	f := &BlocklistFilter{}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			f.terms = append(f.terms, t)
		}
	}
	return f
}

// IsSafe rejects the item if any blocklisted term appears in either the
// URL or the name. A match in one field is enough.
func (f *BlocklistFilter) IsSafe(_ context.Context, item domain.RawItem) (bool, error) {
	url := strings.ToLower(item.URL)
	name := strings.ToLower(item.Name)
	for _, term := range f.terms {
		if strings.Contains(url, term) || strings.Contains(name, term) {
			return false, nil
		}
	}
	return true, nil
}

// AllowAll is a Filter that accepts everything. Used when no blocklist is
// configured and in tests.
type AllowAll struct{}

// IsSafe always returns true.
func (AllowAll) IsSafe(context.Context, domain.RawItem) (bool, error) { return true, nil }
