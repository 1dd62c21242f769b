package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/bookmark-sync/internal/broadcast"
	"github.com/ignite/bookmark-sync/internal/categorize"
	"github.com/ignite/bookmark-sync/internal/collector"
	"github.com/ignite/bookmark-sync/internal/config"
	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/importer"
	"github.com/ignite/bookmark-sync/internal/pkg/httputil"
	"github.com/ignite/bookmark-sync/internal/pkg/logger"
	"github.com/ignite/bookmark-sync/internal/pkg/runguard"
	"github.com/ignite/bookmark-sync/internal/safety"
	"github.com/ignite/bookmark-sync/internal/workspace"
)

// GuardFactory builds a per-user import guard. Injected so tests can
// supply an in-memory guard instead of Redis or Postgres.
type GuardFactory func(userID string) runguard.Guard

// Handlers holds the API's collaborators and the in-flight run registry.
type Handlers struct {
	registry    *workspace.Registry
	filter      safety.Filter
	categorizer categorize.Service
	broadcaster broadcast.Broadcaster
	archiver    importer.Archiver
	importCfg   config.ImportConfig
	newGuard    GuardFactory

	mu   sync.RWMutex
	runs map[string]*importer.Orchestrator
}

// NewHandlers creates the handler set. newGuard may be nil, in which case
// concurrent imports per user are not serialized.
func NewHandlers(
	registry *workspace.Registry,
	filter safety.Filter,
	categorizer categorize.Service,
	broadcaster broadcast.Broadcaster,
	archiver importer.Archiver,
	importCfg config.ImportConfig,
	newGuard GuardFactory,
) *Handlers {
	if newGuard == nil {
		newGuard = func(string) runguard.Guard { return openGuard{} }
	}
	return &Handlers{
		registry:    registry,
		filter:      filter,
		categorizer: categorizer,
		broadcaster: broadcaster,
		archiver:    archiver,
		importCfg:   importCfg,
		newGuard:    newGuard,
		runs:        make(map[string]*importer.Orchestrator),
	}
}

// openGuard never blocks; used when no guard backend is configured.
type openGuard struct{}

func (openGuard) Acquire(context.Context) (bool, error) { return true, nil }
func (openGuard) Release(context.Context) error         { return nil }

// treeNode is the wire form of a browser bookmark tree node.
type treeNode struct {
	ID       string      `json:"id,omitempty"`
	Title    string      `json:"title,omitempty"`
	URL      string      `json:"url,omitempty"`
	Children []*treeNode `json:"children,omitempty"`
}

func (n *treeNode) toNode() *collector.Node {
	if n == nil {
		return nil
	}
	out := &collector.Node{ID: n.ID, Title: n.Title, URL: n.URL}
	for _, c := range n.Children {
		out.Children = append(out.Children, c.toNode())
	}
	return out
}

// importRequest is the browser export payload that starts a run.
type importRequest struct {
	Bookmarks *treeNode        `json:"bookmarks,omitempty"`
	Tabs      []domain.RawItem `json:"tabs,omitempty"`
	History   []domain.RawItem `json:"history,omitempty"`
	Purposes  []string         `json:"purposes"`
	Strategy  string           `json:"strategy,omitempty"`
}

type importStartedResponse struct {
	RunID string `json:"run_id"`
	Phase string `json:"phase"`
}

type importStatusResponse struct {
	importer.Status
	Result *importer.Result `json:"result,omitempty"`
}

// StartImport validates the export payload, takes the user's import
// slot, and starts the pipeline in the background. The response is 202:
// progress is polled via GetImportStatus.
func (h *Handlers) StartImport(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)

	var req importRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if len(req.Purposes) == 0 {
		httputil.BadRequest(w, "at least one purpose is required")
		return
	}

	strategy := importer.StrategyFlatten
	switch req.Strategy {
	case "", string(importer.StrategyFlatten):
	case string(importer.StrategyPreserveStructure):
		strategy = importer.StrategyPreserveStructure
	default:
		httputil.BadRequest(w, "unknown strategy: "+req.Strategy)
		return
	}

	guard := h.newGuard(uid)
	ok, err := guard.Acquire(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if !ok {
		httputil.Conflict(w, "an import is already running for this user")
		return
	}

	purposes := make([]domain.Purpose, 0, len(req.Purposes))
	for _, p := range req.Purposes {
		purposes = append(purposes, domain.Purpose(p))
	}

	src := &collector.InMemorySource{
		Tree:    req.Bookmarks.toNode(),
		Tabs:    tagSource(req.Tabs, domain.SourceTabs),
		Entries: tagSource(req.History, domain.SourceHistory),
	}
	deps := importer.Deps{
		Source:      src,
		Filter:      h.filter,
		Categorizer: h.categorizer,
		Registry:    h.registry,
		Broadcaster: h.broadcaster,
		Archiver:    h.archiver,
	}
	opts := importer.Options{
		UserID:   uid,
		Purposes: purposes,
		Strategy: strategy,
		Structure: collector.StructureOptions{
			MaxDepth:           h.importCfg.MaxDepth,
			OnlyLeafFolders:    h.importCfg.OnlyLeafFolders,
			MinItemsPerFolder:  h.importCfg.MinItemsPerFolder,
			IncludeRootFolders: h.importCfg.IncludeRootFolders,
		},
	}

	orch := importer.New(opts, deps, nil, func(importer.Result) {
		if err := guard.Release(context.Background()); err != nil {
			logger.Warn("import guard release failed", "user_id", uid, "error", err.Error())
		}
	})

	// The run outlives the HTTP request; the server is the owning
	// surface, so the run gets its own context.
	if err := orch.Start(context.Background()); err != nil {
		if relErr := guard.Release(r.Context()); relErr != nil {
			logger.Warn("import guard release failed", "user_id", uid, "error", relErr.Error())
		}
		if errors.Is(err, importer.ErrNoPurposes) {
			httputil.BadRequest(w, err.Error())
			return
		}
		httputil.InternalError(w, err)
		return
	}

	h.mu.Lock()
	h.runs[orch.RunID()] = orch
	h.mu.Unlock()

	logger.Info("import started",
		"run_id", orch.RunID(),
		"user_id", uid,
		"strategy", string(strategy),
		"purposes", len(purposes))
	httputil.Accepted(w, importStartedResponse{
		RunID: orch.RunID(),
		Phase: string(domain.PhaseInitializing),
	})
}

func tagSource(items []domain.RawItem, src domain.ItemSource) []domain.RawItem {
	for i := range items {
		if items[i].Source == "" {
			items[i].Source = src
		}
	}
	return items
}

// GetImportStatus reports a run's phase and, once done, its result.
func (h *Handlers) GetImportStatus(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	h.mu.RLock()
	orch, ok := h.runs[runID]
	h.mu.RUnlock()
	if !ok {
		httputil.NotFound(w, "unknown run")
		return
	}

	resp := importStatusResponse{Status: orch.Status()}
	if orch.IsDone() {
		result := orch.Result()
		resp.Result = &result
	}
	httputil.OK(w, resp)
}

type workspaceResponse struct {
	ID        string    `json:"id"`
	Purpose   string    `json:"purpose"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ListWorkspaces returns the caller's workspaces.
func (h *Handlers) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	records, err := h.registry.ListWorkspaces(r.Context(), userID(r))
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	out := make([]workspaceResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, workspaceResponse{
			ID:        rec.ID,
			Purpose:   string(rec.Purpose),
			Name:      rec.Name,
			CreatedAt: rec.CreatedAt,
		})
	}
	httputil.OK(w, out)
}

// GetWorkspaceGroups returns a workspace's full group payload from the
// durable store.
func (h *Handlers) GetWorkspaceGroups(w http.ResponseWriter, r *http.Request) {
	wsID := chi.URLParam(r, "workspaceID")
	groups, err := h.registry.Groups(r.Context(), userID(r), wsID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			httputil.NotFound(w, "unknown workspace")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, groups)
}

// GetWorkspaceIndex returns the lightweight group index, served from the
// cache tiers when they are warm.
func (h *Handlers) GetWorkspaceIndex(w http.ResponseWriter, r *http.Request) {
	wsID := chi.URLParam(r, "workspaceID")
	index, err := h.registry.GroupsIndex(r.Context(), userID(r), wsID)
	if err != nil {
		if errors.Is(err, workspace.ErrNotFound) {
			httputil.NotFound(w, "unknown workspace")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, index)
}

// HealthCheck reports liveness.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
