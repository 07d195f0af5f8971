// Package discography coordinates artist discography fetches against the
// rate-limited catalog API. A single Orchestrator owns the phase machine, the
// per-artist release cache, and the per-release detail cache; UI callers
// request discographies as the user navigates and the orchestrator paces,
// dedupes, and cancels the underlying fetches so the service never sees a
// burst of requests.
package discography

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/mchabran/encore/internal/catalog"
)

// ErrInvalidPhase signals an operation ran while the phase machine was not in
// the phase it requires. This is a bug in the orchestration logic, not a
// network condition, and is never returned for ordinary fetch failures.
var ErrInvalidPhase = errors.New("invalid pipeline phase")

// Catalog is what the orchestrator needs from the catalog API: the JSON fetch
// capability plus the URL shapes of the three endpoints it consumes.
type Catalog interface {
	catalog.Fetcher
	ArtistOverviewURL(artistID string) string
	ArtistAlbumsURL(artistID string, offset, limit int) string
	AlbumURL(albumID string) string
}

// Config holds the pacing tunables. The defaults are deliberately
// conservative: the fixed delays are the primary 429-avoidance mechanism.
type Config struct {
	MaxPages       int           // pages fetched from the albums endpoint per run
	PageSize       int           // items per page
	PageDelay      time.Duration // fixed wait before each albums page
	HydrationDelay time.Duration // fixed wait before each on-demand detail fetch
}

const (
	defaultMaxPages       = 2
	defaultPageSize       = 50
	defaultPageDelay      = 5 * time.Second
	defaultHydrationDelay = 30 * time.Second
)

// withDefaults returns the config with zero or out-of-range values replaced.
func (c Config) withDefaults() Config {
	if c.MaxPages <= 0 {
		c.MaxPages = defaultMaxPages
	}
	if c.PageSize <= 0 {
		c.PageSize = defaultPageSize
	}
	if c.PageDelay <= 0 {
		c.PageDelay = defaultPageDelay
	}
	if c.HydrationDelay <= 0 {
		c.HydrationDelay = defaultHydrationDelay
	}
	return c
}

// Status is a read-only snapshot of the pipeline.
type Status struct {
	Phase          Phase
	ActiveArtistID string
	ReleasesCount  int
	FetchedAt      time.Time // completion time of the last successful run
}

// TransitionFunc observes phase transitions for logging and telemetry.
// It is called with the orchestrator lock held and must not call back in.
type TransitionFunc func(from, to Phase, artistID string)

// Orchestrator serializes discography fetches. At most one run is active at
// any time system-wide; a request for a different artist supersedes (aborts)
// the running one rather than queueing behind it.
type Orchestrator struct {
	mu      sync.Mutex
	catalog Catalog
	cfg     Config

	phase        Phase
	activeArtist string
	current      []Release
	gen          uint64 // run generation; bumped on begin and abort

	releasesByArtist map[string][]Release
	detailByRelease  map[string]any
	inflight         map[string]*hydration
	lastFetched      time.Time

	onTransition TransitionFunc
}

// New creates the orchestrator. One instance per process owns all fetch state.
func New(cat Catalog, cfg Config) *Orchestrator {
	return &Orchestrator{
		catalog:          cat,
		cfg:              cfg.withDefaults(),
		phase:            PhaseIdle,
		releasesByArtist: make(map[string][]Release),
		detailByRelease:  make(map[string]any),
		inflight:         make(map[string]*hydration),
	}
}

// OnTransition registers the phase transition observer.
func (o *Orchestrator) OnTransition(fn TransitionFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onTransition = fn
}

// RequestDiscography returns the release list for an artist, fetching it from
// the catalog on first request. Repeat requests for a cached artist return
// immediately with no network traffic. A request while a run for a different
// artist is active aborts that run first; a request while a run for the same
// artist is active returns the current partial list instead of starting a
// second pipeline. Failures surface as an empty list, never as an error: an
// error return means the input was invalid or the phase machine was misused.
func (o *Orchestrator) RequestDiscography(ctx context.Context, artistID string) ([]Release, error) {
	if artistID == "" {
		return nil, errors.New("empty artist id")
	}

	o.mu.Lock()
	if cached, ok := o.releasesByArtist[artistID]; ok {
		o.mu.Unlock()
		return slices.Clone(cached), nil
	}

	if o.phase.Active() {
		if o.activeArtist == artistID {
			// At most one concurrent pipeline per artist: hand back the
			// in-progress snapshot instead of fetching again.
			partial := slices.Clone(o.current)
			o.mu.Unlock()
			return partial, nil
		}
		// Supersede: the user navigated away, the old run is dead.
		o.abortLocked("")
	}

	gen, err := o.beginRunLocked(artistID)
	if err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.mu.Unlock()

	releases := o.fetchOverviewAndMerge(ctx, artistID, gen)

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.runAliveLocked(gen) {
		// Superseded or aborted while we were fetching: the result must not
		// be cached or returned.
		return []Release{}, nil
	}

	if len(releases) == 0 {
		// Nothing found (or blocked): leave the cache empty so a later
		// request can retry.
		o.finishRunLocked(gen, PhaseDone)
		return []Release{}, nil
	}

	o.releasesByArtist[artistID] = releases
	o.current = releases
	o.lastFetched = time.Now()
	o.finishRunLocked(gen, PhaseDone)
	return slices.Clone(releases), nil
}

// Abort force-terminates the active run, if any. With a non-empty artistID it
// only aborts a run for that artist. Idempotent: aborting an idle or already
// terminal pipeline is a no-op.
func (o *Orchestrator) Abort(artistID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.abortLocked(artistID)
}

// Status returns a snapshot of the pipeline state. No side effects.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Status{
		Phase:          o.phase,
		ActiveArtistID: o.activeArtist,
		ReleasesCount:  len(o.current),
		FetchedAt:      o.lastFetched,
	}
}

// CachedDiscography returns the completed release list for an artist, if one
// has been fetched this process. Read-only: never triggers a fetch.
func (o *Orchestrator) CachedDiscography(artistID string) ([]Release, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cached, ok := o.releasesByArtist[artistID]
	if !ok {
		return nil, false
	}
	return slices.Clone(cached), true
}

// beginRunLocked starts a new pipeline run and returns its generation.
func (o *Orchestrator) beginRunLocked(artistID string) (uint64, error) {
	if err := o.transitionLocked(PhaseFetchingOverview); err != nil {
		return 0, err
	}
	o.gen++
	o.activeArtist = artistID
	o.current = nil
	return o.gen, nil
}

// finishRunLocked moves an alive run to a terminal phase and resets to idle
// so the next run can start.
func (o *Orchestrator) finishRunLocked(gen uint64, terminal Phase) {
	if !o.runAliveLocked(gen) {
		return
	}
	o.mustTransitionLocked(terminal)
	o.mustTransitionLocked(PhaseIdle)
	o.activeArtist = ""
}

// abortLocked aborts the active run when it matches artistID ("" matches any).
func (o *Orchestrator) abortLocked(artistID string) {
	if !o.phase.Active() {
		return
	}
	if artistID != "" && artistID != o.activeArtist {
		return
	}
	o.mustTransitionLocked(PhaseAborted)
	o.mustTransitionLocked(PhaseIdle)
	o.activeArtist = ""
	o.current = nil
	o.gen++ // invalidate every checkpoint of the aborted run
}

// runAliveLocked is the phase guard for the bulk pipeline: true while the
// given run still owns the machine. Every checkpoint after a suspension point
// must pass through here before mutating shared state.
func (o *Orchestrator) runAliveLocked(gen uint64) bool {
	return o.gen == gen && o.phase == PhaseFetchingOverview
}

// abortRun flips the identified run to aborted; used when a fetch comes back
// rate limited. A no-op if the run was already superseded.
func (o *Orchestrator) abortRun(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.runAliveLocked(gen) {
		return
	}
	o.abortLocked("")
}

// transitionLocked moves the phase machine along a validated edge.
func (o *Orchestrator) transitionLocked(to Phase) error {
	if !canTransition(o.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPhase, o.phase, to)
	}
	from := o.phase
	o.phase = to
	if o.onTransition != nil {
		o.onTransition(from, to, o.activeArtist)
	}
	return nil
}

// mustTransitionLocked is for edges the caller has already validated by
// holding the lock and checking the phase; failure here is a bug.
func (o *Orchestrator) mustTransitionLocked(to Phase) {
	if err := o.transitionLocked(to); err != nil {
		panic(err)
	}
}

// sleepCtx waits for d, returning early with the context error if the caller
// gave up. The pacing delays must otherwise run to completion; they are the
// mechanism that keeps the service from returning 429.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
