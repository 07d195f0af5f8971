package discography

import (
	"context"
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/mchabran/encore/internal/catalog"
)

func detailDoc(id, name string) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"type":        "album",
		"releaseDate": "2020-02-02",
	}
}

func TestHydrate_EmptyReleaseID(t *testing.T) {
	o := New(newFakeCatalog(), testConfig())
	if _, err := o.HydrateOnDemand(context.Background(), ""); err == nil {
		t.Error("expected error for empty release id")
	}
}

func TestHydrate_WaitsPacingDelayThenFetches(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fake := newFakeCatalog()
		fake.responses["album/r1"] = detailDoc("r1", "Full Record")

		cfg := testConfig()
		cfg.HydrationDelay = 30 * time.Second
		o := New(fake, cfg)

		start := time.Now()
		rel, err := o.HydrateOnDemand(context.Background(), "r1")
		if err != nil {
			t.Fatalf("HydrateOnDemand failed: %v", err)
		}
		elapsed := time.Since(start)

		if rel == nil || rel.Name != "Full Record" {
			t.Fatalf("hydrated release = %+v, want Full Record", rel)
		}
		if elapsed < 30*time.Second {
			t.Errorf("hydration took %v, want the full 30s pacing delay", elapsed)
		}
		if n := fake.countCalls("album/r1"); n != 1 {
			t.Errorf("detail fetched %d times, want 1", n)
		}
	})
}

func TestHydrate_CacheHitSkipsDelayAndFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fake := newFakeCatalog()
		cfg := testConfig()
		cfg.HydrationDelay = 30 * time.Second
		o := New(fake, cfg)

		o.mu.Lock()
		o.detailByRelease["r1"] = detailDoc("r1", "Cached Record")
		o.mu.Unlock()

		start := time.Now()
		rel, err := o.HydrateOnDemand(context.Background(), "r1")
		if err != nil {
			t.Fatalf("HydrateOnDemand failed: %v", err)
		}
		elapsed := time.Since(start)

		if rel == nil || rel.Name != "Cached Record" {
			t.Fatalf("hydrated release = %+v, want Cached Record", rel)
		}
		if elapsed != 0 {
			t.Errorf("cache hit waited %v, want no delay", elapsed)
		}
		if len(fake.calls) != 0 {
			t.Errorf("cache hit issued %d fetches, want 0", len(fake.calls))
		}
	})
}

func TestHydrate_DeduplicatesConcurrentCalls(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fake := newFakeCatalog()
		fake.responses["album/r1"] = detailDoc("r1", "Full Record")

		cfg := testConfig()
		cfg.HydrationDelay = 30 * time.Second
		o := New(fake, cfg)

		results := make(chan *Release, 2)
		for range 2 {
			go func() {
				rel, _ := o.HydrateOnDemand(context.Background(), "r1")
				results <- rel
			}()
		}

		for range 2 {
			rel := <-results
			if rel == nil || rel.Name != "Full Record" {
				t.Errorf("concurrent hydration returned %+v, want Full Record", rel)
			}
		}

		// Both callers share a single delay and a single detail fetch.
		if n := fake.countCalls("album/r1"); n != 1 {
			t.Errorf("detail fetched %d times, want 1", n)
		}
	})
}

func TestHydrate_FailureNotCachedAndRetries(t *testing.T) {
	fake := newFakeCatalog()
	fake.errs["album/r1"] = errors.New("boom")

	o := New(fake, testConfig())

	rel, err := o.HydrateOnDemand(context.Background(), "r1")
	if err != nil {
		t.Fatalf("HydrateOnDemand failed: %v", err)
	}
	if rel != nil {
		t.Errorf("failed hydration returned %+v, want nil", rel)
	}

	// A later call re-enters the delay path and fetches again.
	fake.mu.Lock()
	delete(fake.errs, "album/r1")
	fake.responses["album/r1"] = detailDoc("r1", "Full Record")
	fake.mu.Unlock()

	rel, err = o.HydrateOnDemand(context.Background(), "r1")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if rel == nil || rel.Name != "Full Record" {
		t.Errorf("retry returned %+v, want Full Record", rel)
	}
	if n := fake.countCalls("album/r1"); n != 2 {
		t.Errorf("detail fetched %d times across retry, want 2", n)
	}
}

func TestHydrate_RateLimitDoesNotAbortAnything(t *testing.T) {
	fake := newFakeCatalog()
	fake.errs["album/r1"] = &catalog.RateLimitError{Status: 429}

	o := New(fake, testConfig())

	rel, err := o.HydrateOnDemand(context.Background(), "r1")
	if err != nil {
		t.Fatalf("HydrateOnDemand failed: %v", err)
	}
	if rel != nil {
		t.Errorf("rate-limited hydration returned %+v, want nil", rel)
	}
	// Isolated per-release: the pipeline ends back at idle, not stuck.
	if st := o.Status(); st.Phase != PhaseIdle {
		t.Errorf("phase = %s, want idle", st.Phase)
	}
}

func TestHydrate_ClaimsPhaseMachineWhenIdle(t *testing.T) {
	fake := newFakeCatalog()
	fake.responses["album/r1"] = detailDoc("r1", "Full Record")

	o := New(fake, testConfig())

	var transitions []string
	o.OnTransition(func(from, to Phase, artistID string) {
		transitions = append(transitions, from.String()+"->"+to.String())
	})

	if _, err := o.HydrateOnDemand(context.Background(), "r1"); err != nil {
		t.Fatalf("HydrateOnDemand failed: %v", err)
	}

	want := []string{
		"idle->cooldown",
		"cooldown->hydrating",
		"hydrating->done",
		"done->idle",
	}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition[%d] = %s, want %s", i, transitions[i], want[i])
		}
	}
}

func TestHydrate_RunsUnclaimedDuringBulkFetch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		fake := newFakeCatalog()
		fake.responses["overview/A"] = map[string]any{
			"releases": []any{releaseItem("a1", "A Album", "2020-01-01")},
		}
		fake.responses["albums/A?offset=0&limit=50"] = map[string]any{"items": []any{}}
		fake.responses["album/r1"] = detailDoc("r1", "Full Record")
		started, release := fake.blockURL("overview/A")

		o := New(fake, testConfig())

		bulkDone := make(chan struct{})
		go func() {
			_, _ = o.RequestDiscography(context.Background(), "A")
			close(bulkDone)
		}()
		<-started

		// The bulk run owns the phase machine; hydration proceeds anyway.
		rel, err := o.HydrateOnDemand(context.Background(), "r1")
		if err != nil {
			t.Fatalf("HydrateOnDemand failed: %v", err)
		}
		if rel == nil || rel.Name != "Full Record" {
			t.Errorf("hydration returned %+v, want Full Record", rel)
		}
		if st := o.Status(); st.Phase != PhaseFetchingOverview {
			t.Errorf("phase = %s, want the bulk run still fetching", st.Phase)
		}

		release()
		<-bulkDone
	})
}

