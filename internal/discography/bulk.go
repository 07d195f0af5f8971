package discography

import (
	"context"

	"github.com/mchabran/encore/internal/catalog"
)

// fetchOverviewAndMerge runs the bulk portion of a pipeline: one artist
// overview fetch, a deep collection pass over its response, then a bounded
// paged fetch against the albums endpoint to recover releases the overview
// truncates. Pages run strictly sequentially with a fixed delay before each
// one; that pacing must never be skipped. Returns the merged release list
// sorted by date descending, or nil when nothing usable was collected.
func (o *Orchestrator) fetchOverviewAndMerge(ctx context.Context, artistID string, gen uint64) []Release {
	set := newReleaseSet()

	raw, err := o.catalog.FetchJSON(ctx, o.catalog.ArtistOverviewURL(artistID))
	if err != nil {
		if catalog.IsRateLimited(err) {
			o.abortRun(gen)
		}
		// Any other failure: empty merge, but the run is not force-aborted,
		// so the caller can tell "nothing found" from "blocked".
		return nil
	}

	o.mu.Lock()
	alive := o.runAliveLocked(gen)
	o.mu.Unlock()
	if !alive {
		return nil
	}

	collectDeep(raw, set, 0)

	o.fetchAlbumPages(ctx, artistID, gen, set)

	if set.len() == 0 {
		return nil
	}
	return set.sorted()
}

// fetchAlbumPages extends the merge with up to cfg.MaxPages pages from the
// "albums by artist" endpoint. Paging stops early when the run is aborted, a
// page comes back empty, the response says there is no next page, or a page
// fetch fails; in every early-stop case the releases collected so far are
// kept. A rate-limited page additionally aborts the run.
func (o *Orchestrator) fetchAlbumPages(ctx context.Context, artistID string, gen uint64, set *releaseSet) {
	for page := 0; page < o.cfg.MaxPages; page++ {
		if err := sleepCtx(ctx, o.cfg.PageDelay); err != nil {
			return
		}

		o.mu.Lock()
		alive := o.runAliveLocked(gen)
		o.mu.Unlock()
		if !alive {
			return
		}

		offset := page * o.cfg.PageSize
		raw, err := o.catalog.FetchJSON(ctx, o.catalog.ArtistAlbumsURL(artistID, offset, o.cfg.PageSize))
		if err != nil {
			if catalog.IsRateLimited(err) {
				o.abortRun(gen)
			}
			return
		}

		items, hasNext := parseAlbumPage(raw)
		if len(items) == 0 {
			// Zero items is a stop signal regardless of hasNext.
			return
		}
		for _, item := range items {
			if r := normalize(item); r != nil {
				set.add(*r)
			}
		}
		if !hasNext {
			return
		}
	}
}

// parseAlbumPage pulls the item list and continuation flag out of an albums
// page response. An unrecognizable payload reads as an empty final page.
func parseAlbumPage(raw any) ([]any, bool) {
	page, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	items, _ := page["items"].([]any)
	hasNext, _ := page["hasNext"].(bool)
	if next, ok := page["next"].(string); ok && next != "" {
		hasNext = true
	}
	return items, hasNext
}
