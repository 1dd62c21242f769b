package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignite/bookmark-sync/internal/collector"
	"github.com/ignite/bookmark-sync/internal/domain"
	"github.com/ignite/bookmark-sync/internal/pkg/logger"
)

// ErrNoPurposes is returned by Start when no purposes were supplied. The
// orchestrator never starts with defaults; it stays idle until asked
// again properly.
var ErrNoPurposes = errors.New("import requires at least one purpose")

// Orchestrator drives exactly one import run through its phases. Start
// is a no-op once the run is started or finished; IsRunning and IsDone
// expose the machine's state instead of ad-hoc flags.
type Orchestrator struct {
	opts   Options
	deps   Deps
	sink   ProgressSink
	onDone func(Result)

	mu       sync.Mutex
	started  bool
	finished bool
	phase    domain.ImportPhase
	progress float64
	result   Result

	doneOnce sync.Once
}

// New creates an orchestrator for one run. sink may be nil (an
// ImmediateSink is used); onDone may be nil.
func New(opts Options, deps Deps, sink ProgressSink, onDone func(Result)) *Orchestrator {
	if opts.RunID == "" {
		opts.RunID = newRunID()
	}
	if opts.Strategy == "" {
		opts.Strategy = StrategyFlatten
	}
	if sink == nil {
		sink = NewImmediateSink()
	}
	return &Orchestrator{
		opts:   opts,
		deps:   deps,
		sink:   sink,
		onDone: onDone,
		phase:  domain.PhaseInitializing,
		result: Result{RunID: opts.RunID},
	}
}

func newRunID() string { return uuid.New().String() }

// RunID identifies this run.
func (o *Orchestrator) RunID() string { return o.opts.RunID }

// Start begins the run. A second call while the run is in flight or
// after it finished is ignored. ctx is the owning surface's lifetime:
// cancelling it suppresses all further externally visible effects, but
// in-flight network and storage calls complete and their results are
// discarded rather than aborted.
func (o *Orchestrator) Start(ctx context.Context) error {
	if len(o.opts.Purposes) == 0 {
		return ErrNoPurposes
	}

	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.result.StartedAt = nowUTC()
	o.mu.Unlock()

	go o.run(ctx)
	return nil
}

// IsRunning reports whether the run has started and not yet finished.
func (o *Orchestrator) IsRunning() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started && !o.finished
}

// IsDone reports whether the run has reached its terminal phase.
func (o *Orchestrator) IsDone() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.finished
}

// Status returns a point-in-time snapshot for observers.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{
		RunID:    o.opts.RunID,
		Phase:    o.phase,
		Progress: o.progress,
		Running:  o.started && !o.finished,
		Done:     o.finished,
		Err:      o.result.Err,
	}
}

// Result returns the run's result; meaningful once IsDone.
func (o *Orchestrator) Result() Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.result
}

// run executes the pipeline. Every stage error is absorbed here: the run
// always reaches the terminal phase, carrying the first error as a
// reported side channel with partial progress preserved.
func (o *Orchestrator) run(ctx context.Context) {
	// I/O continues even if the owning surface goes away; only the
	// externally visible effects are suppressed after cancellation.
	ioCtx := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("import run panicked", "run_id", o.opts.RunID, "panic", r)
			o.recordErr(fmt.Errorf("import pipeline: %v", r))
		}
		o.finish(ctx)
	}()

	o.advance(ctx, domain.PhaseCollecting, 0.15)
	items, folderGroups, err := o.collect(ioCtx)
	if err != nil {
		logger.Error("collect failed", "run_id", o.opts.RunID, "error", err.Error())
		o.recordErr(err)
		return
	}
	o.setCollected(len(items), folderGroups)

	o.advance(ctx, domain.PhaseFiltering, 0.3)
	items, folderGroups = o.filter(ioCtx, items, folderGroups)

	o.advance(ctx, domain.PhaseCategorizing, 0.5)
	groups, err := o.categorizeStage(ioCtx, items, folderGroups)
	if err != nil {
		logger.Error("categorize failed", "run_id", o.opts.RunID, "error", err.Error())
		o.recordErr(err)
		return
	}

	o.advance(ctx, domain.PhasePersisting, 0.75)
	o.persist(ioCtx, groups)

	o.advance(ctx, domain.PhaseFinalizing, 0.9)
	o.finalize(ioCtx, ctx)
}

// finish moves the machine to done and fires the exactly-once completion
// notification, gated on BOTH the pipeline being terminal and the
// progress sink reaching its own terminal state.
func (o *Orchestrator) finish(ctx context.Context) {
	o.mu.Lock()
	o.result.FinishedAt = nowUTC()
	o.mu.Unlock()

	o.advance(ctx, domain.PhaseDone, 1)

	o.mu.Lock()
	o.finished = true
	result := o.result
	o.mu.Unlock()

	select {
	case <-o.sink.Terminal():
	case <-ctx.Done():
		// Cancelled surface: the done callback is suppressed.
		return
	}
	if ctx.Err() != nil {
		return
	}
	o.doneOnce.Do(func() {
		if o.onDone != nil {
			o.onDone(result)
		}
	})
}

// advance moves to the next phase. Transitions are strictly forward; a
// stale or repeated phase is ignored. The sink is only told while the
// owning surface is still alive.
func (o *Orchestrator) advance(ctx context.Context, phase domain.ImportPhase, progress float64) {
	o.mu.Lock()
	if !o.phase.Before(phase) {
		o.mu.Unlock()
		return
	}
	o.phase = phase
	o.progress = progress
	o.mu.Unlock()

	if ctx.Err() != nil {
		return
	}
	o.sink.Advance(phase, progress)
}

func (o *Orchestrator) recordErr(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.result.Err == "" {
		o.result.Err = err.Error()
	}
}

func (o *Orchestrator) setCollected(itemCount int, folderGroups []collector.Group) {
	for _, g := range folderGroups {
		itemCount += len(g.Items)
	}
	o.mu.Lock()
	o.result.Collected = itemCount
	o.mu.Unlock()
}
