package discography

import "fmt"

// Phase represents the current state of the fetch pipeline.
type Phase int

const (
	PhaseIdle             Phase = iota // No run in progress
	PhaseFetchingOverview              // Artist overview + paged catalog fetch running
	PhaseCooldown                      // Waiting out the pre-hydration delay
	PhaseHydrating                     // Fetching one release's detail
	PhaseDone                          // Run completed
	PhaseAborted                       // Run superseded, aborted, or rate limited
)

// String returns the phase name for status display and telemetry.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetchingOverview:
		return "fetching-overview"
	case PhaseCooldown:
		return "cooldown"
	case PhaseHydrating:
		return "hydrating"
	case PhaseDone:
		return "done"
	case PhaseAborted:
		return "aborted"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Active returns true if a run currently owns the pipeline.
func (p Phase) Active() bool {
	switch p {
	case PhaseFetchingOverview, PhaseCooldown, PhaseHydrating:
		return true
	case PhaseIdle, PhaseDone, PhaseAborted:
		return false
	}
	return false
}

// Terminal returns true for end states that reset to idle before the next run.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseAborted
}

// validTransitions lists the allowed phase machine edges. Anything else is a
// contract violation surfaced as ErrInvalidPhase.
var validTransitions = map[Phase][]Phase{
	PhaseIdle:             {PhaseFetchingOverview, PhaseCooldown},
	PhaseFetchingOverview: {PhaseDone, PhaseAborted},
	PhaseCooldown:         {PhaseHydrating, PhaseAborted},
	PhaseHydrating:        {PhaseDone, PhaseAborted},
	PhaseDone:             {PhaseIdle},
	PhaseAborted:          {PhaseIdle},
}

// canTransition returns true if the edge from -> to is part of the machine.
func canTransition(from, to Phase) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
