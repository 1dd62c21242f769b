package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/bookmark-sync/internal/broadcast"
	"github.com/ignite/bookmark-sync/internal/collector"
	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/pkg/logger"
)

func nowUTC() time.Time { return time.Now().UTC() }

// collect pulls raw items from the source. Flatten yields a single item
// pool; preserve-structure yields per-folder groups instead.
func (o *Orchestrator) collect(ctx context.Context) ([]domain.RawItem, []collector.Group, error) {
	if o.opts.Strategy == StrategyPreserveStructure {
		groups, err := collector.PreserveStructure(ctx, o.deps.Source, o.opts.Structure)
		if err != nil {
			return nil, nil, fmt.Errorf("collect structured: %w", err)
		}
		return nil, groups, nil
	}
	items, err := collector.Flatten(ctx, o.deps.Source)
	if err != nil {
		return nil, nil, fmt.Errorf("collect flat: %w", err)
	}
	return items, nil, nil
}

// filter drops unsafe items. A filter error on a single item rejects
// that item rather than the run; the decision errs on the safe side.
func (o *Orchestrator) filter(ctx context.Context, items []domain.RawItem, folderGroups []collector.Group) ([]domain.RawItem, []collector.Group) {
	keep := func(in []domain.RawItem) []domain.RawItem {
		out := make([]domain.RawItem, 0, len(in))
		for _, it := range in {
			ok, err := o.deps.Filter.IsSafe(ctx, it)
			if err != nil {
				logger.Warn("safety check errored, dropping item", "run_id", o.opts.RunID, "url", it.URL, "error", err.Error())
				continue
			}
			if ok {
				out = append(out, it)
			}
		}
		return out
	}

	if items != nil {
		filtered := keep(items)
		o.mu.Lock()
		o.result.Filtered = len(filtered)
		o.mu.Unlock()
		return filtered, nil
	}

	total := 0
	out := make([]collector.Group, 0, len(folderGroups))
	for _, g := range folderGroups {
		g.Items = keep(g.Items)
		if len(g.Items) == 0 {
			continue
		}
		total += len(g.Items)
		out = append(out, g)
	}
	o.mu.Lock()
	o.result.Filtered = total
	o.mu.Unlock()
	return nil, out
}

// categorizeStage produces the purpose-tagged groups to persist. Flatten
// hands the pooled items to the categorization service; preserve-
// structure keeps the folder grouping and tags everything with the first
// purpose, skipping the remote call entirely.
func (o *Orchestrator) categorizeStage(ctx context.Context, items []domain.RawItem, folderGroups []collector.Group) ([]domain.CategorizedGroup, error) {
	if o.opts.Strategy == StrategyPreserveStructure {
		groups := make([]domain.CategorizedGroup, 0, len(folderGroups))
		for _, g := range folderGroups {
			groups = append(groups, domain.CategorizedGroup{
				ID:      uuid.New().String(),
				Name:    g.Name,
				Purpose: o.opts.Purposes[0],
				Items:   g.Items,
			})
		}
		return groups, nil
	}

	groups, err := o.deps.Categorizer.Categorize(ctx, items, o.opts.Purposes)
	if err != nil {
		return nil, fmt.Errorf("categorize: %w", err)
	}
	return groups, nil
}

// persist creates one workspace per purpose and writes that purpose's
// groups into it. Failures are recorded and the loop continues: a
// workspace that was already created stays, and the other purposes still
// get their data. That is the best-effort partial-results contract.
func (o *Orchestrator) persist(ctx context.Context, groups []domain.CategorizedGroup) {
	byPurpose := make(map[domain.Purpose][]domain.CategorizedGroup, len(o.opts.Purposes))
	for _, g := range groups {
		byPurpose[g.Purpose] = append(byPurpose[g.Purpose], g)
	}

	persisted := 0
	var refs []domain.WorkspaceRef
	for _, purpose := range o.opts.Purposes {
		ref, err := o.deps.Registry.CreateWorkspaceForPurpose(ctx, o.opts.UserID, purpose)
		if err != nil {
			logger.Error("create workspace failed", "run_id", o.opts.RunID, "purpose", string(purpose), "error", err.Error())
			o.recordErr(err)
			continue
		}
		refs = append(refs, ref)

		pg := byPurpose[purpose]
		if err := o.deps.Registry.SaveGroupsToWorkspace(ctx, o.opts.UserID, ref.ID, pg); err != nil {
			logger.Error("save groups failed", "run_id", o.opts.RunID, "workspace", ref.ID, "error", err.Error())
			o.recordErr(err)
			continue
		}
		for _, g := range pg {
			persisted += len(g.Items)
		}
	}

	o.mu.Lock()
	o.result.Workspaces = refs
	o.result.Persisted = persisted
	o.mu.Unlock()
}

// finalize archives the run report and tells the other surfaces to
// re-read. Both are best-effort; surfaceCtx gates the externally visible
// broadcast, ioCtx keeps archival alive past cancellation.
func (o *Orchestrator) finalize(ioCtx, surfaceCtx context.Context) {
	if o.deps.Archiver != nil {
		o.mu.Lock()
		result := o.result
		o.mu.Unlock()
		if err := o.deps.Archiver.ArchiveRunReport(ioCtx, o.opts.UserID, result); err != nil {
			logger.Warn("run report archival failed", "run_id", o.opts.RunID, "error", err.Error())
		}
	}

	if surfaceCtx.Err() != nil {
		return
	}
	if o.deps.Broadcaster != nil {
		o.deps.Broadcaster.Publish(ioCtx, broadcast.Message{Type: broadcast.TypeBookmarksUpdated})
	}
}
