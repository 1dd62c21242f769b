package domain

// ImportPhase is the ordered lifecycle of one import run. Transitions are
// strictly forward; a failed run still advances to PhaseDone, carrying the
// error on a side channel rather than a dedicated failure state.
type ImportPhase string

const (
	PhaseInitializing ImportPhase = "initializing"
	PhaseCollecting   ImportPhase = "collecting"
	PhaseFiltering    ImportPhase = "filtering"
	PhaseCategorizing ImportPhase = "categorizing"
	PhasePersisting   ImportPhase = "persisting"
	PhaseFinalizing   ImportPhase = "finalizing"
	PhaseDone         ImportPhase = "done"
)

var phaseOrder = map[ImportPhase]int{
	PhaseInitializing: 0,
	PhaseCollecting:   1,
	PhaseFiltering:    2,
	PhaseCategorizing: 3,
	PhasePersisting:   4,
	PhaseFinalizing:   5,
	PhaseDone:         6,
}

// Ordinal returns the position of the phase in the lifecycle, or -1 for an
// unknown phase.
func (p ImportPhase) Ordinal() int {
	if o, ok := phaseOrder[p]; ok {
		return o
	}
	return -1
}

// Before reports whether p comes strictly before other in the lifecycle.
func (p ImportPhase) Before(other ImportPhase) bool {
	return p.Ordinal() < other.Ordinal()
}

// IsTerminal reports whether the phase is the final one.
func (p ImportPhase) IsTerminal() bool { return p == PhaseDone }
