package discography

import (
	"context"
	"errors"
)

// hydration tracks one in-flight detail fetch so concurrent requests for the
// same release share a single delay and a single network call.
type hydration struct {
	done    chan struct{}
	release *Release // set before done is closed; nil when the fetch failed
}

// HydrateOnDemand fetches one release's full detail, long after the bulk
// fetch, pacing itself with a fixed delay so rapid tile expansions do not
// burst against the service. A cached release resolves immediately with no
// delay and no network call. Concurrent calls for the same uncached release
// are deduplicated: later callers wait on the first fetch instead of issuing
// their own. A failed fetch yields a nil Release and caches nothing, so a
// later call is free to retry.
func (o *Orchestrator) HydrateOnDemand(ctx context.Context, releaseID string) (*Release, error) {
	if releaseID == "" {
		return nil, errors.New("empty release id")
	}

	o.mu.Lock()
	if raw, ok := o.detailByRelease[releaseID]; ok {
		o.mu.Unlock()
		return normalize(raw), nil
	}

	if h, ok := o.inflight[releaseID]; ok {
		o.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-h.done:
			return h.release, nil
		}
	}

	h := &hydration{done: make(chan struct{})}
	o.inflight[releaseID] = h
	claimGen, claimed := o.claimIdleLocked()
	o.mu.Unlock()

	rel := o.runHydration(ctx, releaseID, claimGen, claimed)

	o.mu.Lock()
	h.release = rel
	delete(o.inflight, releaseID)
	o.mu.Unlock()
	close(h.done)

	return rel, nil
}

// runHydration performs the paced delay and the single detail fetch. When the
// hydration holds a claim on the phase machine it drives it through cooldown
// and hydrating; losing the claim (a discography request superseded it) does
// not stop the hydration, which is isolated per-release.
func (o *Orchestrator) runHydration(ctx context.Context, releaseID string, claimGen uint64, claimed bool) *Release {
	if err := sleepCtx(ctx, o.cfg.HydrationDelay); err != nil {
		o.releaseClaim(claimGen, claimed, PhaseAborted)
		return nil
	}

	if claimed {
		o.mu.Lock()
		if o.claimHeldLocked(claimGen) {
			o.mustTransitionLocked(PhaseHydrating)
		} else {
			claimed = false
		}
		o.mu.Unlock()
	}

	raw, err := o.catalog.FetchJSON(ctx, o.catalog.AlbumURL(releaseID))
	if err != nil {
		// Rate-limit rejections here are informational only: the bulk
		// pipeline is long done and hydration failures stay per-release.
		o.releaseClaim(claimGen, claimed, PhaseAborted)
		return nil
	}

	o.mu.Lock()
	o.detailByRelease[releaseID] = raw
	o.mu.Unlock()

	o.releaseClaim(claimGen, claimed, PhaseDone)
	return normalize(raw)
}

// claimIdleLocked lets a hydration borrow the phase machine when nothing else
// owns it, making the cooldown and fetch observable through Status and the
// transition hook. Returns false when a bulk run is active, in which case the
// hydration simply runs unclaimed.
func (o *Orchestrator) claimIdleLocked() (uint64, bool) {
	if o.phase != PhaseIdle {
		return 0, false
	}
	o.mustTransitionLocked(PhaseCooldown)
	o.gen++
	return o.gen, true
}

// claimHeldLocked reports whether a hydration claim is still in force.
func (o *Orchestrator) claimHeldLocked(gen uint64) bool {
	return o.gen == gen && (o.phase == PhaseCooldown || o.phase == PhaseHydrating)
}

// releaseClaim returns the phase machine to idle through the given terminal
// phase, if the claim is still held.
func (o *Orchestrator) releaseClaim(gen uint64, claimed bool, terminal Phase) {
	if !claimed {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.claimHeldLocked(gen) {
		return
	}
	o.mustTransitionLocked(terminal)
	o.mustTransitionLocked(PhaseIdle)
}
