package discography

import "testing"

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseIdle, "idle"},
		{PhaseFetchingOverview, "fetching-overview"},
		{PhaseCooldown, "cooldown"},
		{PhaseHydrating, "hydrating"},
		{PhaseDone, "done"},
		{PhaseAborted, "aborted"},
		{Phase(42), "phase(42)"},
	}

	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}

func TestPhase_Predicates(t *testing.T) {
	if PhaseIdle.Active() || PhaseDone.Active() || PhaseAborted.Active() {
		t.Error("idle/done/aborted must not be active")
	}
	if !PhaseFetchingOverview.Active() || !PhaseCooldown.Active() || !PhaseHydrating.Active() {
		t.Error("fetching-overview/cooldown/hydrating must be active")
	}
	if !PhaseDone.Terminal() || !PhaseAborted.Terminal() {
		t.Error("done/aborted must be terminal")
	}
	if PhaseIdle.Terminal() || PhaseFetchingOverview.Terminal() {
		t.Error("idle/fetching-overview must not be terminal")
	}
}

func TestCanTransition(t *testing.T) {
	allowed := []struct{ from, to Phase }{
		{PhaseIdle, PhaseFetchingOverview},
		{PhaseIdle, PhaseCooldown},
		{PhaseFetchingOverview, PhaseDone},
		{PhaseFetchingOverview, PhaseAborted},
		{PhaseCooldown, PhaseHydrating},
		{PhaseCooldown, PhaseAborted},
		{PhaseHydrating, PhaseDone},
		{PhaseHydrating, PhaseAborted},
		{PhaseDone, PhaseIdle},
		{PhaseAborted, PhaseIdle},
	}
	for _, tr := range allowed {
		if !canTransition(tr.from, tr.to) {
			t.Errorf("canTransition(%s, %s) = false, want true", tr.from, tr.to)
		}
	}

	denied := []struct{ from, to Phase }{
		{PhaseIdle, PhaseDone},
		{PhaseIdle, PhaseHydrating},
		{PhaseFetchingOverview, PhaseCooldown},
		{PhaseDone, PhaseFetchingOverview},
		{PhaseAborted, PhaseDone},
		{PhaseHydrating, PhaseFetchingOverview},
	}
	for _, tr := range denied {
		if canTransition(tr.from, tr.to) {
			t.Errorf("canTransition(%s, %s) = true, want false", tr.from, tr.to)
		}
	}
}
