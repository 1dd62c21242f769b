// Package importer coordinates one import run: collect raw items, filter
// them, categorize them by purpose, persist the result into workspaces,
// and notify other surfaces. The orchestrator is a one-shot state
// machine; a second run needs a second Orchestrator.
package importer

import (
	"context"
	"time"

	"github.com/ignite/bookmark-sync/internal/broadcast"
	"github.com/ignite/bookmark-sync/internal/categorize"
	"github.com/ignite/bookmark-sync/internal/collector"
	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/safety"
	"github.com/ignite/bookmark-sync/internal/workspace"
)

// Strategy selects how the bookmark tree is collected.
type Strategy string

const (
	// StrategyFlatten pools every source into one deduplicated item set
	// and lets the categorization service do the grouping.
	StrategyFlatten Strategy = "flatten"

	// StrategyPreserveStructure keeps the user's folder hierarchy as the
	// grouping and skips remote categorization entirely.
	StrategyPreserveStructure Strategy = "preserve-structure"
)

// Options configures one import run.
type Options struct {
	RunID    string
	UserID   string
	Purposes []domain.Purpose
	Strategy Strategy
	// Structure tunes StrategyPreserveStructure; ignored by flatten.
	Structure collector.StructureOptions
}

// Result is what one finished run produced. Err carries the first
// pipeline failure as a reported side channel; the run still finishes.
type Result struct {
	RunID      string                `json:"run_id"`
	Workspaces []domain.WorkspaceRef `json:"workspaces"`
	Collected  int                   `json:"collected"`
	Filtered   int                   `json:"filtered"`
	Persisted  int                   `json:"persisted"`
	StartedAt  time.Time             `json:"started_at"`
	FinishedAt time.Time             `json:"finished_at"`
	Err        string                `json:"error,omitempty"`
}

// Status is a point-in-time snapshot for observers.
type Status struct {
	RunID    string             `json:"run_id"`
	Phase    domain.ImportPhase `json:"phase"`
	Progress float64            `json:"progress"`
	Running  bool               `json:"running"`
	Done     bool               `json:"done"`
	Err      string             `json:"error,omitempty"`
}

// ProgressSink is the decoupled visual/progress representation of a run.
// The orchestrator pushes phase advances into it and will not fire its
// done notification until the sink has independently reached its own
// terminal state: completion is the logical AND of both signals.
type ProgressSink interface {
	// Advance reports a phase and overall progress in [0,1].
	Advance(phase domain.ImportPhase, progress float64)
	// Terminal returns a channel that closes once the sink's own
	// representation has finished (e.g. its final frame rendered).
	Terminal() <-chan struct{}
}

// ImmediateSink is a ProgressSink with no independent animation: it is
// terminal as soon as the pipeline tells it the run is done.
type ImmediateSink struct{ done chan struct{} }

// NewImmediateSink creates the default sink.
func NewImmediateSink() *ImmediateSink {
	return &ImmediateSink{done: make(chan struct{})}
}

// Advance closes the terminal channel on the final phase.
func (s *ImmediateSink) Advance(phase domain.ImportPhase, _ float64) {
	if phase == domain.PhaseDone {
		select {
		case <-s.done:
		default:
			close(s.done)
		}
	}
}

// Terminal reports the sink's own completion.
func (s *ImmediateSink) Terminal() <-chan struct{} { return s.done }

// Archiver stores a finished run's result somewhere durable for audit.
// Archival is best-effort and must never fail a run.
type Archiver interface {
	ArchiveRunReport(ctx context.Context, userID string, result Result) error
}

// Deps are the collaborators one run needs. Source is the read-only host
// boundary; everything else is an injected service.
type Deps struct {
	Source      collector.SourceProvider
	Filter      safety.Filter
	Categorizer categorize.Service
	Registry    *workspace.Registry
	Broadcaster broadcast.Broadcaster
	Archiver    Archiver // optional
}
