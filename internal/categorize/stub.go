package categorize

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignite/bookmark-sync/internal/domain"
)

// Stub is a deterministic Service for offline use and tests. It never
// calls out: one purpose yields a single group named "Imported"; multiple
// purposes yield one group per purpose, each containing ALL items
// (broadcast, not partitioned), named "Imported – {Purpose}".
type Stub struct{}

// Categorize implements the deterministic grouping described above.
func (Stub) Categorize(_ context.Context, items []domain.RawItem, purposes []domain.Purpose) ([]domain.CategorizedGroup, error) {
	if len(items) == 0 || len(purposes) == 0 {
		return []domain.CategorizedGroup{}, nil
	}

	if len(purposes) == 1 {
		return []domain.CategorizedGroup{{
			ID:      uuid.New().String(),
			Name:    "Imported",
			Purpose: purposes[0],
			Items:   items,
		}}, nil
	}

	groups := make([]domain.CategorizedGroup, 0, len(purposes))
	for _, p := range purposes {
		groups = append(groups, domain.CategorizedGroup{
			ID:      uuid.New().String(),
			Name:    fmt.Sprintf("Imported – %s", p.Title()),
			Purpose: p,
			Items:   items,
		})
	}
	return groups, nil
}
